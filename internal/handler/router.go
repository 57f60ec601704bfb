package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/schooldesk/substitute-api/internal/middleware"
	"github.com/schooldesk/substitute-api/internal/service"
)

// Deps bundles everything the router needs.
type Deps struct {
	Auth          *AuthHandler
	Teachers      *TeacherHandler
	Schedules     *ScheduleHandler
	Attendance    *AttendanceHandler
	Absences      *AbsenceHandler
	Assignments   *AssignmentHandler
	SMS           *SMSHandler
	Uploads       *UploadHandler
	Notifications *NotificationHandler
	Metrics       *MetricsHandler

	AuthService    *service.AuthService
	MetricsService *service.MetricsService
}

// Register mounts all API routes under the given prefix.
func Register(r *gin.Engine, prefix string, d Deps) {
	r.Use(middleware.Metrics(d.MetricsService))

	r.GET("/metrics", d.Metrics.Prometheus)

	api := r.Group(prefix)

	// public
	api.POST("/login", d.Auth.Login)
	api.POST("/logout", d.Auth.Logout)
	api.POST("/bridge/messages", d.SMS.BridgeMessage)
	api.GET("/bridge/outbox", d.SMS.BridgeOutbox)

	// authenticated
	auth := api.Group("")
	auth.Use(middleware.JWT(d.AuthService))

	auth.GET("/user", d.Auth.CurrentUser)
	auth.POST("/user/change-password", d.Auth.ChangePassword)
	auth.POST("/user/change-username", d.Auth.ChangeUsername)

	auth.GET("/teachers", d.Teachers.List)
	auth.POST("/teachers", d.Teachers.Create)

	auth.GET("/schedules", d.Schedules.Schedules)
	auth.GET("/teacher-schedule/:name", d.Schedules.TeacherSchedule)
	auth.GET("/schedule/:day", d.Schedules.DaySchedule)
	auth.GET("/day-schedules/:day", d.Schedules.DaySchedule)
	auth.GET("/period-schedules", d.Schedules.PeriodSchedule)
	auth.GET("/class-schedules", d.Schedules.ClassSchedule)
	auth.GET("/period-config", d.Schedules.GetPeriodConfig)
	auth.POST("/period-config", d.Schedules.SetPeriodConfig)
	auth.POST("/process-timetables", d.Schedules.Process)

	auth.POST("/attendance", d.Attendance.Record)
	auth.GET("/attendance", d.Attendance.List)
	auth.GET("/attendance/report", d.Attendance.Report)
	auth.GET("/attendance/report/export", d.Attendance.Export)
	auth.POST("/mark-attendance", d.Attendance.Mark)

	auth.GET("/absent-teachers", d.Absences.List)
	auth.GET("/get-absent-teachers", d.Absences.List) // legacy alias
	auth.GET("/absent-teachers-count", d.Absences.Count)
	auth.POST("/absent-teachers", d.Absences.Update)
	auth.POST("/absent-teachers/:id/substitute", d.Absences.AssignSubstitute)
	auth.POST("/update-absent-teachers-file", d.Absences.ReplaceFile)

	auth.POST("/autoassign", d.Assignments.AutoAssign)
	auth.GET("/substitute-assignments", d.Assignments.List)
	auth.GET("/substitute-availability", d.Assignments.Availability)
	auth.GET("/substitute-warnings", d.Assignments.Warnings)
	auth.GET("/verify-assignments", d.Assignments.Verify)
	auth.POST("/reset-assignments", d.Assignments.Reset)

	auth.GET("/sms-history", d.SMS.History)
	auth.POST("/sms-history/:id/resend", d.SMS.Resend)
	auth.POST("/send-messages", d.SMS.Send)
	auth.POST("/record-sms", d.SMS.Record)
	auth.GET("/device-info", d.SMS.DeviceInfo)

	auth.POST("/upload/:type", d.Uploads.Upload)

	auth.GET("/notifications", d.Notifications.List)
	auth.POST("/notifications", d.Notifications.Create)
	auth.POST("/notifications/:id/read", d.Notifications.MarkRead)

	auth.GET("/status", d.Metrics.Status)
}
