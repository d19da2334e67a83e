package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/iatracker/internal/app/controllers"
	"github.com/yigit/iatracker/internal/app/models"
	"github.com/yigit/iatracker/internal/app/models/dto"
	"github.com/yigit/iatracker/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, ctrl *controllers.Controllers, authMiddleware *middleware.AuthMiddleware) {
	var (
		student   = models.RoleStudent
		faculty   = models.RoleFaculty
		hod       = models.RoleHOD
		principal = models.RolePrincipal
	)
	role := authMiddleware.RoleRequired

	v1 := router.Group("/api/v1")

	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}, ""))
	})

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", ctrl.Auth.Login)
		auth.POST("/refresh", ctrl.Auth.RefreshToken)
		auth.POST("/logout", ctrl.Auth.Logout)
	}

	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	authenticated.GET("/auth/me", ctrl.Auth.Me)

	marks := authenticated.Group("/marks")
	{
		marks.GET("/subject/:subjectId", role(faculty, hod, principal), ctrl.Marks.ForSubject)
		marks.GET("/my", role(student), ctrl.Marks.MyMarks)
		marks.POST("/batch", role(faculty, hod), ctrl.Marks.SaveBatch)
		marks.POST("/submit", role(faculty, hod), ctrl.Marks.Submit)
		marks.GET("/pending", role(hod, principal), ctrl.Marks.Pending)
		marks.POST("/approve", role(hod), ctrl.Marks.Approve)
		marks.POST("/unlock", role(hod, principal), ctrl.Marks.Unlock)
	}

	analytics := authenticated.Group("/analytics")
	analytics.Use(role(faculty, hod, principal))
	{
		analytics.GET("/department/:dept/stats", ctrl.Analytics.DepartmentStats)
		analytics.GET("/department/:dept/cie-trend", ctrl.Analytics.DepartmentCieTrend)
		analytics.GET("/department/:dept/subject-performance", ctrl.Analytics.SubjectPerformance)
		analytics.GET("/subject/:subjectId/stats", ctrl.Analytics.SubjectStats)
	}

	authenticated.POST("/announcements", role(hod, principal), ctrl.Announcements.Save)

	studentGroup := authenticated.Group("/student")
	studentGroup.Use(role(student))
	{
		studentGroup.GET("/announcements", ctrl.Announcements.ForStudent)
		studentGroup.GET("/dashboard", ctrl.Analytics.StudentDashboard)
	}

	facultyGroup := authenticated.Group("/faculty")
	facultyGroup.Use(role(faculty, hod))
	{
		facultyGroup.GET("/analytics", ctrl.Analytics.FacultyAnalytics)
		facultyGroup.GET("/my-subjects", ctrl.Directory.MySubjects)
		facultyGroup.GET("/schedules", ctrl.Announcements.ForFaculty)
		facultyGroup.POST("/announcements", ctrl.Announcements.Save)
		facultyGroup.GET("/announcements/list", ctrl.Announcements.ForFaculty)
		facultyGroup.GET("/announcements/details", ctrl.Announcements.Details)
	}

	authenticated.GET("/hod/announcements", role(hod), ctrl.Announcements.ForHOD)

	principalGroup := authenticated.Group("/principal")
	{
		principalGroup.GET("/dashboard", role(principal), ctrl.Analytics.PrincipalDashboard)
		principalGroup.GET("/faculty", role(hod, principal), ctrl.Directory.FacultyList)
		principalGroup.GET("/search", role(principal), ctrl.Directory.Search)
	}

	notifications := authenticated.Group("/notifications")
	{
		notifications.GET("", ctrl.Notifications.List)
		notifications.POST("", role(faculty, hod, principal), ctrl.Notifications.Create)
		notifications.GET("/unread/count", ctrl.Notifications.UnreadCount)
		notifications.PUT("/read-all", ctrl.Notifications.MarkAllRead)
		notifications.PUT("/:id/read", ctrl.Notifications.MarkRead)
		notifications.POST("/broadcast", role(hod, principal), ctrl.Notifications.Broadcast)
	}

	attendance := authenticated.Group("/attendance")
	{
		attendance.POST("", role(faculty, hod), ctrl.Attendance.Record)
		attendance.GET("/subject/:subjectId", role(faculty, hod, principal), ctrl.Attendance.ForSubject)
		attendance.GET("/my", role(student), ctrl.Attendance.MySummary)
	}

	subjects := authenticated.Group("/subjects")
	{
		subjects.GET("", ctrl.Directory.Subjects)
		subjects.GET("/:id", ctrl.Directory.Subject)
		subjects.GET("/department/:department", ctrl.Directory.ByDepartment)
	}

	// Browsers cannot set headers on a websocket handshake; JWTAuth also accepts ?token=.
	authenticated.GET("/ws/notifications", ctrl.Notifications.Stream)
}
