package handlers

import (
	"context"
	"net/http"
	"time"

	"cleaning_robot/internal/models"
	"cleaning_robot/internal/service"
	"cleaning_robot/internal/ws"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockRobot struct {
	execResult CommandResultAlias
	execErr    error
	ingestResp models.RobotState
	ingestErr  error

	lastCommand   service.CommandParams
	lastTelemetry models.Telemetry
	execCalls     int
	ingestCalls   int
}

// CommandResultAlias keeps mock fields readable at call sites.
type CommandResultAlias = service.CommandResult

func (m *mockRobot) Execute(ctx context.Context, p service.CommandParams) (service.CommandResult, error) {
	m.execCalls++
	m.lastCommand = p
	return m.execResult, m.execErr
}
func (m *mockRobot) IngestTelemetry(ctx context.Context, t models.Telemetry) (models.RobotState, error) {
	m.ingestCalls++
	m.lastTelemetry = t
	return m.ingestResp, m.ingestErr
}

type mockMonitoring struct {
	state models.RobotState
	err   error
}

func (m *mockMonitoring) GetState(ctx context.Context) (models.RobotState, error) {
	return m.state, m.err
}

type mockCleaningLog struct {
	resp       []models.CleaningLog
	err        error
	lastFilter service.LogFilter
}

func (m *mockCleaningLog) List(ctx context.Context, f service.LogFilter) ([]models.CleaningLog, error) {
	m.lastFilter = f
	return m.resp, m.err
}

type mockSimulator struct{}

func (mockSimulator) Run(ctx context.Context, tick time.Duration) {}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, ws.NewHub(nil), nil, false)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func newAuthRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, ws.NewHub(nil), nil, true)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
