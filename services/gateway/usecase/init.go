package usecase

import (
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/piresc/arbiter/internal/pkg/jwt"
	"github.com/piresc/arbiter/internal/pkg/models"
	"github.com/piresc/arbiter/services/gateway"
)

// GatewayUC implements the gateway use case interface
type GatewayUC struct {
	cfg         *models.Config
	tokens      *jwt.Manager
	entityRepo  gateway.EntityRepo
	sessionRepo gateway.SessionRepo
	executorGW  gateway.ExecutorGW
	authGW      gateway.AuthGW
	scriptGW    gateway.ScriptGW
	eventGW     gateway.EventGW
	nrApp       *newrelic.Application
	operations  map[string]operation
	now         func() time.Time
}

// NewGatewayUC creates a new gateway use case. executorGW is only used in
// upstream mode and entityRepo only in local mode; either may be nil when
// the other mode is configured.
func NewGatewayUC(
	cfg *models.Config,
	tokens *jwt.Manager,
	entityRepo gateway.EntityRepo,
	sessionRepo gateway.SessionRepo,
	executorGW gateway.ExecutorGW,
	authGW gateway.AuthGW,
	scriptGW gateway.ScriptGW,
	eventGW gateway.EventGW,
	nrApp *newrelic.Application,
) *GatewayUC {
	uc := &GatewayUC{
		cfg:         cfg,
		tokens:      tokens,
		entityRepo:  entityRepo,
		sessionRepo: sessionRepo,
		executorGW:  executorGW,
		authGW:      authGW,
		scriptGW:    scriptGW,
		eventGW:     eventGW,
		nrApp:       nrApp,
		now:         time.Now,
	}
	uc.operations = uc.registerOperations()
	return uc
}

// VerifyToken checks an access token
func (uc *GatewayUC) VerifyToken(token string) (*models.Claims, error) {
	return uc.tokens.Verify(token)
}
