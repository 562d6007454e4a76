package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/andy/kihopunch/internal/domain"
	"github.com/andy/kihopunch/internal/kiho"
	"github.com/andy/kihopunch/internal/logging"
	"github.com/charmbracelet/log"
)

var ErrInvalidCount = errors.New("punch count must be positive")

// PunchAPI is the part of the punch API client the service needs
type PunchAPI interface {
	ListPunches(ctx context.Context, q kiho.ListQuery) ([]domain.Punch, error)
	CreatePunch(ctx context.Context, req *domain.NewPunchRequest) (*domain.Punch, error)
}

// PunchService starts and stops work sessions and lists punch lines
type PunchService interface {
	// Start posts a LOGIN punch. A zero costCentreID is resolved from the description.
	// Returns nil, nil on a dry run.
	Start(ctx context.Context, description string, costCentreID int64) (*domain.Punch, error)

	// Stop posts a LOGOUT punch. Returns nil, nil on a dry run.
	Stop(ctx context.Context) (*domain.Punch, error)

	// Latest returns the latest count punches in ascending timestamp order.
	// Returns nil, nil on a dry run.
	Latest(ctx context.Context, count int, punchType *domain.PunchType) ([]domain.Punch, error)

	// ResolveCostCentre returns the cost centre Start would use for description
	ResolveCostCentre(description string) int64
}

// Options configures a PunchService
type Options struct {
	DryRun bool
	Logger *log.Logger
	Now    func() time.Time
}

type punchService struct {
	api         PunchAPI
	costCentres *CostCentreResolver
	dryRun      bool
	logger      *log.Logger
	now         func() time.Time
}

// NewPunchService creates a new punch service
func NewPunchService(api PunchAPI, costCentres *CostCentreResolver, opts Options) PunchService {
	s := &punchService{
		api:         api,
		costCentres: costCentres,
		dryRun:      opts.DryRun,
		logger:      opts.Logger,
		now:         opts.Now,
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *punchService) ResolveCostCentre(description string) int64 {
	if s.costCentres == nil {
		return 0
	}
	return s.costCentres.Resolve(description)
}

func (s *punchService) Start(ctx context.Context, description string, costCentreID int64) (*domain.Punch, error) {
	if costCentreID == 0 {
		costCentreID = s.ResolveCostCentre(description)
	}

	req, err := domain.NewLoginPunch(description, costCentreID, s.now())
	if err != nil {
		return nil, err
	}

	s.logger.Info("starting work", "description", description, "ccc_id", costCentreID)
	return s.post(ctx, req)
}

func (s *punchService) Stop(ctx context.Context) (*domain.Punch, error) {
	s.logger.Info("stopping worktime")
	return s.post(ctx, domain.NewLogoutPunch(s.now()))
}

func (s *punchService) Latest(ctx context.Context, count int, punchType *domain.PunchType) ([]domain.Punch, error) {
	if count <= 0 {
		return nil, ErrInvalidCount
	}

	q := kiho.ListQuery{Count: count, Type: punchType}
	s.logger.Debug("punch list query", "params", q.Values().Encode())
	if s.dryRun {
		s.logger.Warn("DRY RUN - skipping HTTP GET and response processing")
		return nil, nil
	}

	punches, err := s.api.ListPunches(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list punches: %w", err)
	}

	// The API returns newest first
	slices.SortStableFunc(punches, func(a, b domain.Punch) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return punches, nil
}

func (s *punchService) post(ctx context.Context, req *domain.NewPunchRequest) (*domain.Punch, error) {
	if body, err := json.MarshalIndent(req, "", "  "); err == nil {
		s.logger.Debug("created punch JSON", "body", string(body))
	}

	if s.dryRun {
		s.logger.Warn("DRY RUN - skipping HTTP POST and response processing")
		return nil, nil
	}

	punch, err := s.api.CreatePunch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s punch: %w", req.NewPunch.Type, err)
	}
	return punch, nil
}
