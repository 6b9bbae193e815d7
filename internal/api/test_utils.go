package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/botikaph/annotator-backend/internal/middleware"
	"github.com/botikaph/annotator-backend/internal/models"
	"github.com/botikaph/annotator-backend/internal/service"
)

// TestEnv holds the in-memory database and services handler tests run
// against.
type TestEnv struct {
	DB          *gorm.DB
	AuthService *service.AuthService
	Router      *gin.Engine
	Population  string
}

// SetupTestEnv creates an in-memory database and a fully wired router.
func SetupTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	// A named in-memory database keeps each test isolated while letting the
	// pooled connections share state.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.AnnotationEntry{}))

	authService := service.NewAuthService(db, "test-secret")
	annotationService := service.NewAnnotationService(db)
	populationFile := t.TempDir() + "/userInquiry.txt"
	populationService := service.NewPopulationService(populationFile, annotationService)
	exportService := service.NewExportService(annotationService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(nil))

	authHandler := NewAuthHandler(authService)
	annotationHandler := NewAnnotationHandler(annotationService, populationService, exportService, nil, nil)
	adminHandler := NewAdminHandler(authService)

	router.GET("/health", HealthCheck)
	v1 := router.Group("/api/v1")
	authHandler.RegisterRoutes(v1)

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authService))
	annotationHandler.RegisterRoutes(protected)
	adminHandler.RegisterRoutes(protected)

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return &TestEnv{
		DB:          db,
		AuthService: authService,
		Router:      router,
		Population:  populationFile,
	}
}

// CreateTestUser creates an account and returns it with a valid token.
func (env *TestEnv) CreateTestUser(t *testing.T, isAdmin bool) (*models.User, string) {
	t.Helper()

	id := uuid.New()
	hashed, err := bcrypt.GenerateFromPassword([]byte("testpassword123"), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := &models.User{
		ID:           id,
		Name:         fmt.Sprintf("Annotator %s", id.String()[:8]),
		Email:        fmt.Sprintf("annotator+%s@example.com", id.String()),
		PasswordHash: string(hashed),
		IsAdmin:      isAdmin,
	}
	require.NoError(t, env.DB.Create(user).Error)

	token, err := env.AuthService.Login(context.Background(), user.Email, "testpassword123")
	require.NoError(t, err)
	return user, token
}

// PerformRequest makes an HTTP request against the test router.
func (env *TestEnv) PerformRequest(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		req = httptest.NewRequest(method, path, bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	env.Router.ServeHTTP(w, req)
	return w
}

// ValidSubmission returns a submission that passes every rule; tests mutate
// single fields to trigger specific failures.
func ValidSubmission(inquiry string) map[string]interface{} {
	return map[string]interface{}{
		"user_inquiry":                     inquiry,
		"user_age":                         "27",
		"language":                         "tagalog",
		"confidence":                       "high",
		"min_age":                          "12",
		"symptom_labels":                   []string{"FEVER", "HEADACHE"},
		"suggested_otc":                    []string{"Paracetamol"},
		"brand_examples":                   []string{"Biogesic"},
		"age_restriction_option":           "no",
		"known_contraindications_option":   "no",
		"pregnancy_considerations_option":  "no",
		"gender_specific_limitations":      "null",
		"requires_medical_referral_option": "no",
		"medical_notes": map[string]interface{}{
			"otc_dosage_guide": map[string]interface{}{
				"Paracetamol": map[string]string{
					"dosage_mg":         "500",
					"times_per_day":     "3",
					"max_doses_per_day": "4",
					"notes":             "Take after meals.",
				},
			},
		},
	}
}
