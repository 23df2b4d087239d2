package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/school-admin-service/internal/models"
	"github.com/SAP-F-2025/school-admin-service/internal/services"
	"github.com/SAP-F-2025/school-admin-service/internal/utils"
)

type HandlerManager struct {
	authHandler    *AuthHandler
	schoolHandler  *SchoolHandler
	userHandler    *UserHandler
	studentHandler *StudentHandler
	classHandler   *ClassHandler
	recordHandler  *RecordHandler
	auditHandler   *AuditHandler
	authMiddleware *AuthMiddleware
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		authHandler:    NewAuthHandler(serviceManager.Auth(), logger),
		schoolHandler:  NewSchoolHandler(serviceManager.School(), logger),
		userHandler:    NewUserHandler(serviceManager.User(), logger),
		studentHandler: NewStudentHandler(serviceManager.Student(), logger),
		classHandler:   NewClassHandler(serviceManager.Class(), serviceManager.Subject(), logger),
		recordHandler: NewRecordHandler(
			serviceManager.Attendance(),
			serviceManager.Grade(),
			serviceManager.Discipline(),
			serviceManager.SkillAssessment(),
			logger,
		),
		auditHandler:   NewAuditHandler(serviceManager.Audit(), logger),
		authMiddleware: NewAuthMiddleware(serviceManager.Auth()),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	superAdmin := hm.authMiddleware.RequireRole(models.RoleSuperAdmin)
	anyAdmin := hm.authMiddleware.RequireRole(models.RoleSuperAdmin, models.RoleSchoolAdmin)

	// Public auth endpoints
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/login", hm.authHandler.Login)
		auth.POST("/password-reset/request", hm.authHandler.RequestPasswordReset)
	}

	// Authenticated API
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.Authenticate())
	{
		// Session management
		session := v1.Group("/auth")
		{
			session.POST("/logout", hm.authHandler.Logout)
			session.GET("/me", hm.authHandler.Me)
			session.POST("/password", hm.authHandler.ChangePassword)
			session.POST("/password-reset", anyAdmin, hm.authHandler.ResetPassword)
			session.POST("/impersonate/:user_id", superAdmin, hm.authHandler.Impersonate)
			session.POST("/stop-impersonation", hm.authHandler.StopImpersonation)
		}

		// School management plus school-scoped roster resources; the
		// school ID stays in the path so tenant checks read naturally
		schools := v1.Group("/schools")
		{
			schools.POST("", superAdmin, hm.schoolHandler.CreateSchool)
			schools.GET("", hm.schoolHandler.ListSchools)
			schools.GET("/stats", superAdmin, hm.schoolHandler.GetStats)
			schools.GET("/:school_id", hm.schoolHandler.GetSchool)
			schools.PUT("/:school_id", superAdmin, hm.schoolHandler.UpdateSchool)
			schools.DELETE("/:school_id", superAdmin, hm.schoolHandler.DeleteSchool)
			schools.GET("/:school_id/skills", hm.schoolHandler.ListSkills)

			schools.POST("/:school_id/teachers", anyAdmin, hm.userHandler.CreateTeacher)
			schools.GET("/:school_id/teachers", hm.userHandler.ListTeachers)

			schools.POST("/:school_id/students", anyAdmin, hm.studentHandler.CreateStudent)
			schools.GET("/:school_id/students", hm.studentHandler.ListStudents)
			schools.POST("/:school_id/students/import", anyAdmin, hm.studentHandler.ImportStudents)

			schools.POST("/:school_id/classes", anyAdmin, hm.classHandler.CreateClass)
			schools.GET("/:school_id/classes", hm.classHandler.ListClasses)

			schools.POST("/:school_id/subjects", anyAdmin, hm.classHandler.CreateSubject)
			schools.GET("/:school_id/subjects", hm.classHandler.ListSubjects)

			schools.GET("/:school_id/attendance-summary", anyAdmin, hm.recordHandler.GetAttendanceSummary)
		}

		// User management
		users := v1.Group("/users")
		{
			users.POST("/admins", superAdmin, hm.userHandler.CreateAdmin)
			users.GET("", anyAdmin, hm.userHandler.ListUsers)
			users.GET("/:id", hm.userHandler.GetUser)
			users.PUT("/:id", hm.userHandler.UpdateUser)
		}

		// Students
		students := v1.Group("/students")
		{
			students.GET("/:student_id", hm.studentHandler.GetStudent)
			students.PUT("/:student_id", anyAdmin, hm.studentHandler.UpdateStudent)
			students.DELETE("/:student_id", anyAdmin, hm.studentHandler.DeleteStudent)

			students.GET("/:student_id/grades", hm.recordHandler.ListStudentGrades)
			students.GET("/:student_id/discipline", hm.recordHandler.ListStudentDiscipline)
			students.GET("/:student_id/skill-assessments", hm.recordHandler.ListStudentSkillAssessments)
		}

		// Classes
		classes := v1.Group("/classes")
		{
			classes.GET("/mine", hm.authMiddleware.RequireRole(models.RoleTeacher), hm.classHandler.ListMyClasses)
			classes.GET("/:class_id", hm.classHandler.GetClass)
			classes.GET("/:class_id/roster", hm.classHandler.GetClassRoster)
			classes.PUT("/:class_id", anyAdmin, hm.classHandler.UpdateClass)
			classes.DELETE("/:class_id", anyAdmin, hm.classHandler.DeleteClass)

			classes.POST("/:class_id/students", anyAdmin, hm.studentHandler.EnrollStudent)
			classes.DELETE("/:class_id/students/:student_id", anyAdmin, hm.studentHandler.UnenrollStudent)

			classes.GET("/:class_id/attendance", hm.recordHandler.GetAttendanceSheet)
			classes.GET("/:class_id/grades", hm.recordHandler.ListClassGrades)
			classes.GET("/:class_id/grades/summary", hm.recordHandler.GetGradeSummary)
			classes.GET("/:class_id/grades/export", hm.recordHandler.ExportGradeReport)
			classes.GET("/:class_id/discipline", hm.recordHandler.ListClassDiscipline)
			classes.GET("/:class_id/skill-assessments", hm.recordHandler.ListClassSkillAssessments)
		}

		// Subjects
		v1.DELETE("/subjects/:id", anyAdmin, hm.classHandler.DeleteSubject)

		// Daily record-keeping writes
		v1.POST("/attendance", hm.recordHandler.RecordAttendance)
		v1.POST("/grades", hm.recordHandler.RecordGrade)
		v1.POST("/discipline", hm.recordHandler.CreateDisciplineRecord)
		v1.POST("/skill-assessments", hm.recordHandler.CreateSkillAssessment)

		// Audit trail
		v1.GET("/audit-log", anyAdmin, hm.auditHandler.ListAuditLog)
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "school-admin-service",
		})
	})
}
