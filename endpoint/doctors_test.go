package endpoint_test

import (
	"net/http"
	"testing"

	"github.com/otscheduler/portal/model"
	"github.com/stretchr/testify/assert"
)

func TestListDoctors_CachedAndFiltered(t *testing.T) {
	r, _, fb := SetupTestServer(t)
	fb.setDoctors(
		surgeon,
		model.Account{ID: "d-2", Username: "Dr. Kale", Email: "kale@example.com", Role: model.RoleDoctor, Department: "ortho"},
		model.Account{ID: "d-3", Username: "Dr. Sen", Email: "sen@example.com", Role: model.RoleDoctor},
	)

	w, resp, err := performRequest(r, requestSpec{method: http.MethodGet, path: "/doctors"})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, w.Code)
	doctors := resp["data"].([]interface{})
	assert.Len(t, doctors, 3)
	assert.Equal(t, "Orthopedics", doctors[1].(map[string]interface{})["departmentName"])
	assert.Equal(t, "General", doctors[2].(map[string]interface{})["departmentName"])

	w, resp, err = performRequest(r, requestSpec{method: http.MethodGet, path: "/doctors?department=orthopedics"})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp["data"], 1)

	fb.mu.Lock()
	assert.Equal(t, 1, fb.doctorCalls)
	fb.mu.Unlock()
}

func TestGetDoctor(t *testing.T) {
	r, _, fb := SetupTestServer(t)
	fb.setDoctors(surgeon)
	fb.mu.Lock()
	fb.users[patient.Email] = patient
	fb.mu.Unlock()

	w, resp, err := performRequest(r, requestSpec{method: http.MethodGet, path: "/doctors/" + surgeon.Email})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Dr. Mehta", dataOf(resp)["username"])
	assert.Equal(t, "Cardiology", dataOf(resp)["departmentName"])

	w, resp, err = performRequest(r, requestSpec{method: http.MethodGet, path: "/doctors/" + patient.Email})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, model.MsgDoctorNotFound, resp["msg"])

	w, resp, err = performRequest(r, requestSpec{method: http.MethodGet, path: "/doctors/nobody@example.com"})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, model.MsgDoctorNotFound, resp["msg"])
}
