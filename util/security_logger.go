package util

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/otscheduler/portal/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SecurityEventType represents different types of security events
type SecurityEventType string

const (
	EventLoginSuccess       SecurityEventType = "LOGIN_SUCCESS"
	EventLoginFailure       SecurityEventType = "LOGIN_FAILURE"
	EventSignupSuccess      SecurityEventType = "SIGNUP_SUCCESS"
	EventLogout             SecurityEventType = "LOGOUT"
	EventSessionExpired     SecurityEventType = "SESSION_EXPIRED"
	EventBookingCreated     SecurityEventType = "BOOKING_CREATED"
	EventStatusChanged      SecurityEventType = "STATUS_CHANGED"
	EventAppointmentEdited  SecurityEventType = "APPOINTMENT_EDITED"
	EventReportUploaded     SecurityEventType = "REPORT_UPLOADED"
	EventUnauthorizedAccess SecurityEventType = "UNAUTHORIZED_ACCESS"
	EventRateLimitExceeded  SecurityEventType = "RATE_LIMIT_EXCEEDED"
	EventEndpointCall       SecurityEventType = "ENDPOINT_CALL"
)

// SecurityEvent represents a security event to be logged
type SecurityEvent struct {
	EventType SecurityEventType
	UserID    string
	Email     string
	Role      model.Role
	IP        string
	UserAgent string
	Message   string
	Details   map[string]interface{}
}

// Actor identifies who triggered an event and from where.
type Actor struct {
	User      model.User
	IP        string
	UserAgent string
}

var securityLogger = log.New(os.Stdout, "[SECURITY] ", log.LstdFlags|log.Lmsgprefix)
var securityDB *gorm.DB

// SetSecurityLoggerDB sets a gorm DB instance used by the security logger.
// Call this during application startup after DB initialization.
func SetSecurityLoggerDB(db *gorm.DB) {
	securityDB = db
}

const maxLogValueBytes = 200

// sanitizeLogValue removes newlines and other characters that could break log parsing
func sanitizeLogValue(value string) string {
	value = strings.NewReplacer("\n", " ", "\r", " ", "\t", " ").Replace(value)
	if len(value) > maxLogValueBytes {
		cut := maxLogValueBytes
		for cut > 0 && !utf8.RuneStart(value[cut]) {
			cut--
		}
		value = value[:cut] + "..."
	}
	return value
}

// LogSecurityEvent logs a security event and persists it when a DB is configured.
func LogSecurityEvent(event SecurityEvent) {
	msg := fmt.Sprintf("Event=%s UserID=%s Email=%s Role=%s IP=%s UserAgent=%s Message=%s",
		sanitizeLogValue(string(event.EventType)),
		sanitizeLogValue(event.UserID),
		sanitizeLogValue(event.Email),
		sanitizeLogValue(string(event.Role)),
		sanitizeLogValue(event.IP),
		sanitizeLogValue(event.UserAgent),
		sanitizeLogValue(event.Message),
	)
	if len(event.Details) > 0 {
		// Details are persisted, not printed
		msg = fmt.Sprintf("%s DetailsCount=%d", msg, len(event.Details))
	}
	securityLogger.Println(msg)

	if securityDB == nil {
		return
	}

	var details datatypes.JSON
	if event.Details != nil {
		if b, err := json.Marshal(event.Details); err == nil {
			details = datatypes.JSON(b)
		}
	}
	entry := model.SecurityLog{
		EventType: string(event.EventType),
		UserID:    sanitizeLogValue(event.UserID),
		Email:     sanitizeLogValue(event.Email),
		Role:      sanitizeLogValue(string(event.Role)),
		IP:        sanitizeLogValue(event.IP),
		Location:  sanitizeLogValue(GetIPLocation(event.IP).String()),
		UserAgent: sanitizeLogValue(event.UserAgent),
		Message:   sanitizeLogValue(event.Message),
		Details:   details,
	}
	if err := securityDB.Create(&entry).Error; err != nil {
		securityLogger.Printf("Failed to persist security event: %v", err)
	}
}

func (a Actor) event(kind SecurityEventType, message string, details map[string]interface{}) SecurityEvent {
	return SecurityEvent{
		EventType: kind,
		UserID:    a.User.ID,
		Email:     a.User.Email,
		Role:      a.User.Role,
		IP:        a.IP,
		UserAgent: a.UserAgent,
		Message:   message,
		Details:   details,
	}
}

// LogLoginSuccess logs a successful login event
func LogLoginSuccess(a Actor) {
	LogSecurityEvent(a.event(EventLoginSuccess, "User logged in successfully", nil))
}

// LogLoginFailure logs a failed login attempt
func LogLoginFailure(email, ip, userAgent, reason string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventLoginFailure,
		Email:     email,
		IP:        ip,
		UserAgent: userAgent,
		Message:   fmt.Sprintf("Login failed: %s", reason),
	})
}

// LogSignupSuccess logs an account registered through the portal.
func LogSignupSuccess(email string, role model.Role, ip, userAgent string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventSignupSuccess,
		Email:     email,
		Role:      role,
		IP:        ip,
		UserAgent: userAgent,
		Message:   fmt.Sprintf("%s account registered", role.Label()),
	})
}

// LogLogout logs a logout event
func LogLogout(a Actor) {
	LogSecurityEvent(a.event(EventLogout, "User logged out", nil))
}

// LogSessionExpired logs a session removed by the sweeper.
func LogSessionExpired(s model.Session) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventSessionExpired,
		UserID:    s.UserID,
		Email:     s.Email,
		Role:      s.Role,
		IP:        s.ClientIP,
		UserAgent: s.Browser,
		Message:   "Session expired",
	})
}

// LogBookingCreated logs a consultation booked by a patient.
func LogBookingCreated(a Actor, req model.BookingRequest) {
	LogSecurityEvent(a.event(EventBookingCreated, "Consultation booked", map[string]interface{}{
		"doctor_email": req.DoctorEmail,
		"date":         req.Date,
		"slot":         req.Slot,
	}))
}

// LogStatusChanged logs an OT appointment status change.
func LogStatusChanged(a Actor, patientEmail, status string) {
	LogSecurityEvent(a.event(EventStatusChanged, "OT appointment status changed", map[string]interface{}{
		"patient_email": patientEmail,
		"status":        status,
	}))
}

// LogAppointmentEdited logs an edit to an OT appointment.
func LogAppointmentEdited(a Actor, appointmentID string, edit model.AppointmentEdit) {
	LogSecurityEvent(a.event(EventAppointmentEdited, "OT appointment edited", map[string]interface{}{
		"appointment_id": appointmentID,
		"ot_number":      edit.OTNumber,
		"date":           edit.Date,
		"slot":           edit.Slot,
		"nurses":         edit.Nurses,
	}))
}

// LogReportUploaded logs a report attached to a patient.
func LogReportUploaded(a Actor, patientEmail, fileName string) {
	LogSecurityEvent(a.event(EventReportUploaded, "Report uploaded", map[string]interface{}{
		"patient_email": patientEmail,
		"file_name":     fileName,
	}))
}

// LogUnauthorizedAccess logs unauthorized access attempts
func LogUnauthorizedAccess(a Actor, resource, reason string) {
	LogSecurityEvent(a.event(EventUnauthorizedAccess, fmt.Sprintf("Unauthorized access to %s: %s", resource, reason), nil))
}

// LogRateLimitExceeded logs when rate limit is exceeded
func LogRateLimitExceeded(ip, endpoint string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventRateLimitExceeded,
		IP:        ip,
		Message:   fmt.Sprintf("Rate limit exceeded for endpoint: %s", endpoint),
	})
}

// SetSecurityLoggerForTest sets a custom logger for testing purposes
func SetSecurityLoggerForTest(logger *log.Logger) {
	securityLogger = logger
}

// GetSecurityLoggerForTest returns the current security logger for testing purposes
func GetSecurityLoggerForTest() *log.Logger {
	return securityLogger
}
