package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/iqueue/staffing/internal/models"
	"github.com/iqueue/staffing/internal/repository"
	appErr "github.com/iqueue/staffing/pkg/errors"
	"github.com/iqueue/staffing/pkg/logger"
)

// UserRow is one user in a bulk import.
type UserRow struct {
	Name         string                  `json:"name" yaml:"name"`
	Role         models.Role             `json:"role" yaml:"role"`
	Location     string                  `json:"location" yaml:"location"`
	Email        string                  `json:"email" yaml:"email"`
	Phone        string                  `json:"phone" yaml:"phone"`
	Availability models.Availability     `json:"availability" yaml:"availability"`
	CanFloat     models.FloatEligibility `json:"can_float" yaml:"can_float"`
}

func (r UserRow) profile() models.Profile {
	return models.Profile{
		Name: r.Name, Role: r.Role, Location: r.Location, Email: r.Email,
		Phone: r.Phone, Availability: r.Availability, CanFloat: r.CanFloat,
	}
}

// ShiftRow is one shift in a bulk import. A row with AssignTo is created
// already approved for that user.
type ShiftRow struct {
	Location  string      `json:"location" yaml:"location"`
	Role      models.Role `json:"role" yaml:"role"`
	Area      string      `json:"area" yaml:"area"`
	Date      string      `json:"date" yaml:"date"`
	StartTime string      `json:"start_time" yaml:"start_time"`
	EndTime   string      `json:"end_time" yaml:"end_time"`
	Comments  string      `json:"comments" yaml:"comments"`
	AssignTo  string      `json:"assign_to,omitempty" yaml:"assign_to"`
}

func (r ShiftRow) details() (models.ShiftDetails, error) {
	day, err := time.Parse(time.DateOnly, r.Date)
	if err != nil {
		return models.ShiftDetails{}, appErr.Newf(appErr.CodeInvalid, "date %q is not YYYY-MM-DD", r.Date)
	}
	return models.ShiftDetails{
		Location: r.Location, Role: r.Role, Area: r.Area, Date: day,
		StartTime: r.StartTime, EndTime: r.EndTime, Comments: r.Comments,
	}, nil
}

// RowResult reports the outcome of one row. Row numbers start at 1.
type RowResult struct {
	Row   int    `json:"row"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error,omitempty"`
}

// ImportReport summarizes a bulk import. A failed row never stops the batch.
type ImportReport struct {
	Created int         `json:"created"`
	Failed  int         `json:"failed"`
	Rows    []RowResult `json:"rows"`
}

func (r *ImportReport) add(row int, id uuid.UUID, err error) {
	if err != nil {
		r.Failed++
		r.Rows = append(r.Rows, RowResult{Row: row, Error: errorMessage(err)})
		return
	}
	r.Created++
	r.Rows = append(r.Rows, RowResult{Row: row, ID: id.String()})
}

func errorMessage(err error) string {
	var ae *appErr.AppError
	if errors.As(err, &ae) {
		if ae.Err != nil && ae.Code == appErr.CodeInvalid {
			return fmt.Sprintf("%s: %v", ae.Message, ae.Err)
		}
		return ae.Message
	}
	return err.Error()
}

// Fixture is a seed file: users first, then shifts posted by PostedBy.
type Fixture struct {
	PostedBy string     `yaml:"posted_by"`
	Users    []UserRow  `yaml:"users"`
	Shifts   []ShiftRow `yaml:"shifts"`
}

// ParseFixture decodes a YAML seed file.
func ParseFixture(r io.Reader) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, appErr.Wrap(err, appErr.CodeInvalid, "parse fixture failed")
	}
	return &f, nil
}

// SeedReport holds the per-section results of a fixture import.
type SeedReport struct {
	Users  ImportReport `json:"users"`
	Shifts ImportReport `json:"shifts"`
}

type ImportService interface {
	ImportUsers(ctx context.Context, actorID uuid.UUID, rows []UserRow) (*ImportReport, error)
	ImportShifts(ctx context.Context, actorID uuid.UUID, rows []ShiftRow) (*ImportReport, error)
	// Seed loads a fixture without an authenticated actor. Shifts are posted
	// by the fixture's PostedBy user, which must be an admin once users load.
	Seed(ctx context.Context, f *Fixture) (*SeedReport, error)
}

type importService struct {
	users  *userService
	shifts ShiftService
}

// NewImportService builds an importer. Imported users get defaultPassword.
func NewImportService(store repository.Store, shifts ShiftService, defaultPassword string) ImportService {
	return &importService{users: &userService{store: store, defaultPassword: defaultPassword}, shifts: shifts}
}

var _ ImportService = (*importService)(nil)

func (s *importService) ImportUsers(ctx context.Context, actorID uuid.UUID, rows []UserRow) (*ImportReport, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	return s.importUsers(ctx, rows), nil
}

func (s *importService) ImportShifts(ctx context.Context, actorID uuid.UUID, rows []ShiftRow) (*ImportReport, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	return s.importShifts(ctx, actorID, rows), nil
}

func (s *importService) Seed(ctx context.Context, f *Fixture) (*SeedReport, error) {
	out := &SeedReport{Users: *s.importUsers(ctx, f.Users)}
	if len(f.Shifts) == 0 {
		return out, nil
	}
	var poster models.User
	if err := s.users.store.Users().GetByEmail(ctx, normalizeEmail(f.PostedBy), &poster); err != nil {
		return out, appErr.Wrap(err, appErr.CodeInvalid, "fixture posted_by user not found")
	}
	if err := requireAdmin(poster, "seed shifts"); err != nil {
		return out, err
	}
	out.Shifts = *s.importShifts(ctx, poster.ID, f.Shifts)
	return out, nil
}

func (s *importService) requireAdmin(ctx context.Context, actorID uuid.UUID) error {
	actor, err := loadActor(ctx, s.users.store.Users(), actorID)
	if err != nil {
		return err
	}
	return requireAdmin(actor, "import data")
}

func (s *importService) importUsers(ctx context.Context, rows []UserRow) *ImportReport {
	report := &ImportReport{Rows: make([]RowResult, 0, len(rows))}
	for i, row := range rows {
		u, err := s.users.create(ctx, row.profile())
		var id uuid.UUID
		if u != nil {
			id = u.ID
		}
		report.add(i+1, id, err)
	}
	logger.L().Info("users imported", zap.Int("created", report.Created), zap.Int("failed", report.Failed))
	return report
}

func (s *importService) importShifts(ctx context.Context, posterID uuid.UUID, rows []ShiftRow) *ImportReport {
	report := &ImportReport{Rows: make([]RowResult, 0, len(rows))}
	for i, row := range rows {
		sh, err := s.importShift(ctx, posterID, row)
		var id uuid.UUID
		if sh != nil {
			id = sh.ID
		}
		report.add(i+1, id, err)
	}
	logger.L().Info("shifts imported", zap.Int("created", report.Created), zap.Int("failed", report.Failed))
	return report
}

func (s *importService) importShift(ctx context.Context, posterID uuid.UUID, row ShiftRow) (*models.Shift, error) {
	d, err := row.details()
	if err != nil {
		return nil, err
	}
	if row.AssignTo == "" {
		return s.shifts.Post(ctx, posterID, d)
	}
	var target models.User
	if err := s.users.store.Users().GetByEmail(ctx, normalizeEmail(row.AssignTo), &target); err != nil {
		return nil, appErr.Wrap(err, appErr.CodeNotFound, "assign_to user not found")
	}
	return s.shifts.Assign(ctx, posterID, target.ID, d)
}
