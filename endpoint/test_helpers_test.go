package endpoint_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/otscheduler/portal/backend"
	"github.com/otscheduler/portal/config"
	"github.com/otscheduler/portal/endpoint"
	"github.com/otscheduler/portal/middleware"
	"github.com/otscheduler/portal/model"
	"github.com/otscheduler/portal/util"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type backendAccount struct {
	password string
	reply    interface{}
}

type registration struct {
	path     string
	fields   map[string]string
	hasImage bool
}

type upload struct {
	doctor, patient, fileName, content string
}

// fakeBackend stands in for the OT scheduling REST API.
type fakeBackend struct {
	t   *testing.T
	srv *httptest.Server

	mu            sync.Mutex
	accounts      map[string]backendAccount
	users         map[string]model.Account
	doctors       []model.Account
	doctorCalls   int
	ot            []model.OTAppointment
	patients      map[string]model.Account
	bookings      []model.BookingRequest
	registrations []registration
	edits         map[string]model.AppointmentEdit
	uploads       []upload
	otFail        bool
	clinicFail    bool
	bookRefusal   string
}

func newFakeBackend(t *testing.T) *fakeBackend {
	fb := &fakeBackend{
		t:        t,
		accounts: map[string]backendAccount{},
		users:    map[string]model.Account{},
		patients: map[string]model.Account{},
		edits:    map[string]model.AppointmentEdit{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /user/register", fb.handleRegisterMultipart)
	mux.HandleFunc("POST /users/register", fb.handleRegisterJSON)
	mux.HandleFunc("POST /user/login", fb.handleLogin)
	mux.HandleFunc("POST /user/forgot-password", fb.handleForgotPassword)
	mux.HandleFunc("GET /user/email/{email}", fb.handleGetUser)
	mux.HandleFunc("GET /user/role/doctor", fb.handleListDoctors)
	mux.HandleFunc("POST /ot/appointments/doctor", fb.handleBook)
	mux.HandleFunc("GET /ot/doctor/{email}", fb.handleDoctorOT)
	mux.HandleFunc("GET /ot/patient/{email}", fb.handlePatientOT)
	mux.HandleFunc("GET /ot/appointments/{who}/{email}", fb.handleClinicList)
	mux.HandleFunc("GET /ot/{role}/{email}", fb.handleProfile)
	mux.HandleFunc("PUT /ot/appointments/status/{doctor}/{patient}", fb.handleStatus)
	mux.HandleFunc("PATCH /ot/appointments/{id}", fb.handleEdit)
	mux.HandleFunc("POST /ot/report/{doctor}/{patient}", fb.handleUpload)

	fb.srv = httptest.NewServer(mux)
	t.Cleanup(fb.srv.Close)
	return fb
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// addAccount makes email/password log in with the given reply body.
func (fb *fakeBackend) addAccount(email, password string, reply interface{}) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.accounts[email] = backendAccount{password: password, reply: reply}
}

func (fb *fakeBackend) setOT(list ...model.OTAppointment) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.ot = list
}

func (fb *fakeBackend) setDoctors(list ...model.Account) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.doctors = list
	for _, d := range list {
		fb.users[d.Email] = d
	}
}

func (fb *fakeBackend) lastRegistration() registration {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if len(fb.registrations) == 0 {
		fb.t.Fatalf("no registration received")
	}
	return fb.registrations[len(fb.registrations)-1]
}

func (fb *fakeBackend) handleRegisterMultipart(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	fields := map[string]string{}
	for k, v := range r.MultipartForm.Value {
		fields[k] = v[0]
	}
	_, hasImage := r.MultipartForm.File["profileImage"]

	fb.mu.Lock()
	fb.registrations = append(fb.registrations, registration{path: r.URL.Path, fields: fields, hasImage: hasImage})
	fb.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered"})
}

func (fb *fakeBackend) handleRegisterJSON(w http.ResponseWriter, r *http.Request) {
	fields := map[string]string{}
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for _, reg := range fb.registrations {
		if reg.fields["email"] == fields["email"] {
			writeJSON(w, http.StatusConflict, map[string]string{"message": "Email already registered"})
			return
		}
	}
	fb.registrations = append(fb.registrations, registration{path: r.URL.Path, fields: fields})
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered"})
}

func (fb *fakeBackend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&creds)

	fb.mu.Lock()
	acc, ok := fb.accounts[creds.Email]
	fb.mu.Unlock()
	if !ok || acc.password != creds.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, acc.reply)
}

func (fb *fakeBackend) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	if strings.HasSuffix(body.Email, "@unknown.test") {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "No account with that email"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{})
}

func (fb *fakeBackend) handleGetUser(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	u, ok := fb.users[r.PathValue("email")]
	fb.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "User not found"})
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (fb *fakeBackend) handleListDoctors(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.doctorCalls++
	writeJSON(w, http.StatusOK, fb.doctors)
}

func (fb *fakeBackend) handleBook(w http.ResponseWriter, r *http.Request) {
	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if fb.bookRefusal != "" {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": false, "message": fb.bookRefusal})
		return
	}
	for _, b := range fb.bookings {
		if b.DoctorEmail == req.DoctorEmail && b.Date == req.Date && b.Slot == req.Slot {
			writeJSON(w, http.StatusConflict, map[string]string{"message": "Slot already booked"})
			return
		}
	}
	fb.bookings = append(fb.bookings, req)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"appointment": map[string]interface{}{"id": len(fb.bookings), "status": "Pending"},
	})
}

func (fb *fakeBackend) handleDoctorOT(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if fb.otFail {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "OT service down"})
		return
	}
	email := r.PathValue("email")
	list := []model.OTAppointment{}
	for _, a := range fb.ot {
		if a.DoctorEmail == email || a.AssistantDoctorEmail == email {
			list = append(list, a)
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "ok", "data": list})
}

func (fb *fakeBackend) handlePatientOT(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if fb.otFail {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "OT service down"})
		return
	}
	email := r.PathValue("email")
	list := []model.OTAppointment{}
	reports := []model.Report{}
	for _, a := range fb.ot {
		if a.PatientEmail == email {
			list = append(list, a)
			reports = append(reports, a.Reports...)
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"patient":      fb.patients[email],
		"appointments": list,
		"reports":      reports,
	})
}

func (fb *fakeBackend) handleClinicList(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if fb.clinicFail {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "appointments unavailable"})
		return
	}
	who, email := r.PathValue("who"), r.PathValue("email")
	list := []model.ClinicAppointment{}
	for i, b := range fb.bookings {
		if (who == "doctor" && b.DoctorEmail == email) || (who == "patient" && b.PatientEmail == email) {
			list = append(list, model.ClinicAppointment{
				ID:           model.FlexString(fmt.Sprintf("b-%d", i+1)),
				DoctorEmail:  b.DoctorEmail,
				PatientEmail: b.PatientEmail,
				PatientName:  b.PatientName,
				Date:         b.Date,
				Slot:         b.Slot,
				Status:       "Pending",
			})
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"appointments": list})
}

func (fb *fakeBackend) handleProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"profile": map[string]string{"role": r.PathValue("role"), "email": r.PathValue("email")},
	})
}

func (fb *fakeBackend) handleStatus(w http.ResponseWriter, r *http.Request) {
	var body model.StatusUpdate
	_ = json.NewDecoder(r.Body).Decode(&body)
	doctor, patient := r.PathValue("doctor"), r.PathValue("patient")

	fb.mu.Lock()
	defer fb.mu.Unlock()
	for i, a := range fb.ot {
		if a.DoctorEmail == doctor && a.PatientEmail == patient {
			fb.ot[i].Status = body.Status
			writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Appointment not found"})
}

func (fb *fakeBackend) handleEdit(w http.ResponseWriter, r *http.Request) {
	var edit model.AppointmentEdit
	if err := json.NewDecoder(r.Body).Decode(&edit); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	id := r.PathValue("id")

	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.edits[id] = edit
	for i, a := range fb.ot {
		if string(a.ID) == id {
			fb.ot[i].OTNumber = edit.OTNumber
			fb.ot[i].Nurses = edit.Nurses
			writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Appointment not found"})
}

func (fb *fakeBackend) handleUpload(w http.ResponseWriter, r *http.Request) {
	f, header, err := r.FormFile("report")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "report file missing"})
		return
	}
	defer f.Close()
	content, _ := io.ReadAll(f)
	doctor, patient := r.PathValue("doctor"), r.PathValue("patient")

	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.uploads = append(fb.uploads, upload{doctor: doctor, patient: patient, fileName: header.Filename, content: string(content)})
	for i, a := range fb.ot {
		if a.DoctorEmail == doctor && a.PatientEmail == patient {
			fb.ot[i].Reports = append(fb.ot[i].Reports, model.Report{FileName: header.Filename, UploadedBy: doctor})
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// SetupTestServer builds the portal router against an in-memory database and a
// fake backend.
func SetupTestServer(t *testing.T) (*gin.Engine, *gorm.DB, *fakeBackend) {
	db, err := config.ConnectDB()
	if err != nil {
		t.Fatalf("failed to connect test DB: %v", err)
	}
	if err := db.AutoMigrate(model.MigrationModels...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	fb := newFakeBackend(t)
	client := backend.NewClient(fb.srv.URL, 5*time.Second)

	util.InitDirectoryCache(time.Minute)
	t.Cleanup(util.FlushDirectoryCache)

	r := gin.New()
	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.BackendMiddleware(client))
	endpoint.RegisterRoutes(r)
	return r, db, fb
}

var (
	surgeon = model.Account{ID: "d-1", Username: "Dr. Mehta", Email: "mehta@example.com", Role: model.RoleDoctor, Department: "Cardiology"}
	patient = model.Account{ID: "p-1", Username: "Asha", Email: "asha@example.com", Role: model.RolePatient}
)

// loginAs registers account with the fake backend, logs in through the portal
// and returns the session token.
func loginAs(t *testing.T, r *gin.Engine, fb *fakeBackend, account model.Account) string {
	t.Helper()
	fb.addAccount(account.Email, "secret", map[string]interface{}{"user": account})

	w, resp, err := performRequest(r, requestSpec{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   map[string]string{"email": account.Email, "password": "secret"},
	})
	assert.NoError(t, err)
	if !assert.Equal(t, http.StatusOK, w.Code, "login failed: %v", resp) {
		t.FailNow()
	}
	data := resp["data"].(map[string]interface{})
	return data["token"].(string)
}
