package endpoint_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/otscheduler/portal/middleware"
)

type multipartFile struct {
	field, name string
	content     []byte
}

type requestSpec struct {
	method  string
	path    string
	body    interface{}
	token   string
	headers map[string]string
	// form and files switch the request to multipart/form-data.
	form  map[string]string
	files []multipartFile
}

func encodeBody(spec requestSpec) (io.Reader, string, error) {
	if spec.form != nil || spec.files != nil {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		for k, v := range spec.form {
			if err := w.WriteField(k, v); err != nil {
				return nil, "", err
			}
		}
		for _, f := range spec.files {
			part, err := w.CreateFormFile(f.field, f.name)
			if err != nil {
				return nil, "", err
			}
			if _, err := part.Write(f.content); err != nil {
				return nil, "", err
			}
		}
		if err := w.Close(); err != nil {
			return nil, "", err
		}
		return &buf, w.FormDataContentType(), nil
	}

	switch v := spec.body.(type) {
	case nil:
		return strings.NewReader(""), "", nil
	case string:
		return strings.NewReader(v), "application/json", nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(b), "application/json", nil
	}
}

// performRequest runs spec against r and decodes a JSON envelope when the
// response carries one.
func performRequest(r *gin.Engine, spec requestSpec) (*httptest.ResponseRecorder, map[string]interface{}, error) {
	body, contentType, err := encodeBody(spec)
	if err != nil {
		return nil, nil, err
	}

	req := httptest.NewRequest(spec.method, spec.path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if spec.token != "" {
		req.Header.Set(middleware.SessionHeader, spec.token)
	}
	for key, value := range spec.headers {
		req.Header.Set(key, value)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			return w, nil, err
		}
	}
	return w, response, nil
}

// dataOf returns the envelope's data object.
func dataOf(resp map[string]interface{}) map[string]interface{} {
	data, _ := resp["data"].(map[string]interface{})
	return data
}
