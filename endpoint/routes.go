package endpoint

import (
	"github.com/gin-gonic/gin"
	"github.com/otscheduler/portal/middleware"
	"github.com/otscheduler/portal/model"
)

// RegisterRoutes mounts the portal API on r. Database and backend middleware
// must already be installed on the router.
func RegisterRoutes(r gin.IRouter) {
	r.GET("/", Welcome)

	catalog := r.Group("/catalog")
	catalog.GET("/departments", ListDepartments)
	catalog.GET("/conditions/:condition", LookupCondition)
	catalog.GET("/slots", ListFormOptions)

	limited := middleware.RateLimiter(middleware.RateLimitConfig{})
	auth := r.Group("/auth")
	auth.POST("/register", Register)
	auth.POST("/login", limited, Login)
	auth.POST("/forgot-password", limited, ForgotPassword)
	auth.POST("/logout", middleware.OptionalSession(), Logout)
	auth.GET("/session", middleware.ValidateLoginToken(), CurrentSession)

	r.GET("/doctors", ListDoctors)
	r.GET("/doctors/:email", GetDoctor)

	session := r.Group("", middleware.ValidateLoginToken())
	session.GET("/profile", Profile)

	patient := session.Group("", middleware.RequireRole(model.RolePatient))
	patient.POST("/appointments", BookAppointment)
	patient.GET("/dashboard/patient", PatientDashboard)
	patient.GET("/ot/appointments/:id/slip", AppointmentSlip)

	surgeon := session.Group("", middleware.RequireRole(model.RoleDoctor, model.RoleAssistantDoctor))
	surgeon.GET("/dashboard/doctor", DoctorDashboard)
	surgeon.PUT("/ot/status", UpdateStatus)
	surgeon.PATCH("/ot/appointments/:id", EditAppointment)
	surgeon.POST("/ot/reports", UploadReport)
}
