package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/iliyamo/telehealth-core/internal/authorize"
	"github.com/iliyamo/telehealth-core/internal/model"
	"github.com/iliyamo/telehealth-core/internal/queue"
	"github.com/iliyamo/telehealth-core/internal/repository"
)

// PrescriptionStore is satisfied by *repository.PrescriptionRepo.
type PrescriptionStore interface {
	DB() *sql.DB
	Create(ctx context.Context, p *model.Prescription) error
	GetByID(ctx context.Context, id uint64) (model.Prescription, error)
	GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Prescription, error)
	ResolveTx(ctx context.Context, tx *sql.Tx, id uint64, status model.PrescriptionStatus, at time.Time) (bool, error)
	ListByPatient(ctx context.Context, patient string) ([]model.Prescription, error)
	ListByDoctor(ctx context.Context, doctor string) ([]model.Prescription, error)
}

// EscalationPublisher announces committed escalations.  *queue.Publisher
// satisfies it, including a nil one.
type EscalationPublisher interface {
	PublishEscalation(ctx context.Context, ev queue.PrescriptionEscalatedEvent) error
}

// Resolution is the outcome of RecordAffordability.
type Resolution struct {
	Prescription model.Prescription `json:"prescription"`
	// Notified lists the workers that received the escalation message.
	Notified []string `json:"notified,omitempty"`
	// Warning is ErrNoEscalationTarget when an unaffordable prescription
	// had nobody to escalate to.  The status change still committed.
	Warning error `json:"-"`
}

// Workflow drives the prescription state machine:
//
//	pending --(affordable)--> affordable
//	pending --(unaffordable)--> unaffordable, escalated to present workers
type Workflow struct {
	accounts      AccountStore
	messages      MessageStore
	prescriptions PrescriptionStore
	policy        *authorize.Policy
	publisher     EscalationPublisher
	clock         *clock
	timeout       time.Duration
	publishWait   time.Duration
	log           *slog.Logger
}

// defaultPublishTimeout bounds the post-commit event publish.
const defaultPublishTimeout = 2 * time.Second

type WorkflowDeps struct {
	Accounts       AccountStore
	Messages       MessageStore
	Prescriptions  PrescriptionStore
	Policy         *authorize.Policy
	Publisher      EscalationPublisher
	StoreTimeout   time.Duration
	PublishTimeout time.Duration // zero means defaultPublishTimeout
	Log            *slog.Logger
}

func NewWorkflow(d WorkflowDeps) *Workflow {
	if d.PublishTimeout <= 0 {
		d.PublishTimeout = defaultPublishTimeout
	}
	return &Workflow{
		accounts:      d.Accounts,
		messages:      d.Messages,
		prescriptions: d.Prescriptions,
		policy:        d.Policy,
		publisher:     d.Publisher,
		clock:         newClock(nil),
		timeout:       d.StoreTimeout,
		publishWait:   d.PublishTimeout,
		log:           d.Log,
	}
}

// Issue creates a pending prescription from doctor to patient.
func (w *Workflow) Issue(ctx context.Context, doctor, patient, text string) (model.Prescription, error) {
	if strings.TrimSpace(text) == "" {
		return model.Prescription{}, ErrEmptyBody
	}
	ctx, cancel := bounded(ctx, w.timeout)
	defer cancel()

	doc, err := w.requireRole(ctx, doctor, model.RoleDoctor)
	if err != nil {
		return model.Prescription{}, err
	}
	if !w.policy.CanIssuePrescription(doc.Role) {
		return model.Prescription{}, ErrInvalidActor
	}
	if _, err := w.requireRole(ctx, patient, model.RolePatient); err != nil {
		return model.Prescription{}, err
	}

	now := w.clock.Now()
	p := model.Prescription{Doctor: doctor, Patient: patient, Text: text, CreatedAt: now, UpdatedAt: now}
	if err := w.prescriptions.Create(ctx, &p); err != nil {
		return model.Prescription{}, storeError(err)
	}
	w.log.Info("prescription issued",
		slog.Uint64("prescription_id", p.ID), slog.String("doctor", doctor), slog.String("patient", patient))
	return p, nil
}

// requireRole loads username and fails with ErrInvalidActor unless it
// exists with role.
func (w *Workflow) requireRole(ctx context.Context, username string, role model.Role) (model.Account, error) {
	acc, err := w.accounts.GetByUsername(ctx, username)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return model.Account{}, ErrInvalidActor
	case err != nil:
		return model.Account{}, storeError(err)
	case acc.Role != role:
		return model.Account{}, ErrInvalidActor
	}
	return acc, nil
}

// Get returns one prescription.
func (w *Workflow) Get(ctx context.Context, id uint64) (model.Prescription, error) {
	ctx, cancel := bounded(ctx, w.timeout)
	defer cancel()
	p, err := w.prescriptions.GetByID(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return model.Prescription{}, ErrNotFound
	case err != nil:
		return model.Prescription{}, storeError(err)
	}
	return p, nil
}

// RecordAffordability resolves a pending prescription.  When the patient
// cannot afford it, the status change and one System message per present
// community health worker are written in a single transaction: either all
// of them are visible or none is, in which case ErrEscalationFailed is
// returned and the prescription stays pending.
func (w *Workflow) RecordAffordability(ctx context.Context, id uint64, canAfford bool) (Resolution, error) {
	status := model.StatusUnaffordable
	if canAfford {
		status = model.StatusAffordable
	}

	tctx, cancel := bounded(ctx, w.timeout)
	defer cancel()

	tx, err := w.prescriptions.DB().BeginTx(tctx, nil)
	if err != nil {
		return Resolution{}, storeError(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	p, err := w.prescriptions.GetByIDTx(tctx, tx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return Resolution{}, ErrNotFound
	case err != nil:
		return Resolution{}, storeError(err)
	case p.Status.Terminal():
		return Resolution{}, ErrAlreadyResolved
	}

	now := w.clock.Now()
	ok, err := w.prescriptions.ResolveTx(tctx, tx, id, status, now)
	if err != nil {
		return Resolution{}, storeError(err)
	}
	if !ok {
		return Resolution{}, ErrAlreadyResolved
	}
	p.Status, p.UpdatedAt = status, now

	res := Resolution{Prescription: p}
	if !canAfford {
		notified, err := w.escalateTx(tctx, tx, p)
		if err != nil {
			w.log.Error("prescription escalation failed; rolling back",
				slog.Uint64("prescription_id", id), slog.Any("err", err))
			return Resolution{}, fmt.Errorf("%w: %w", ErrEscalationFailed, storeError(err))
		}
		res.Notified = notified
		if len(notified) == 0 {
			res.Warning = ErrNoEscalationTarget
		}
	}

	if err := tx.Commit(); err != nil {
		if !canAfford {
			return Resolution{}, fmt.Errorf("%w: %w", ErrEscalationFailed, storeError(err))
		}
		return Resolution{}, storeError(err)
	}
	committed = true

	if res.Warning != nil {
		w.log.Warn("unaffordable prescription has no escalation target",
			slog.Uint64("prescription_id", id), slog.String("patient", p.Patient))
	}
	if len(res.Notified) > 0 {
		w.log.Info("prescription escalated",
			slog.Uint64("prescription_id", id), slog.String("patient", p.Patient), slog.Any("notified", res.Notified))
		w.announce(ctx, queue.PrescriptionEscalatedEvent{
			PrescriptionID: p.ID,
			Patient:        p.Patient,
			Doctor:         p.Doctor,
			NotifiedUsers:  res.Notified,
			EscalatedAt:    now.Format(time.RFC3339Nano),
		})
	}
	return res, nil
}

// announce publishes ev within publishWait.  The escalation is already
// committed, so a failure is logged and not returned.
func (w *Workflow) announce(ctx context.Context, ev queue.PrescriptionEscalatedEvent) {
	if w.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.publishWait)
	defer cancel()
	if err := w.publisher.PublishEscalation(ctx, ev); err != nil {
		w.log.Warn("escalation event not published",
			slog.Uint64("prescription_id", ev.PrescriptionID), slog.Any("err", err))
	}
}

// escalateTx appends one System message to every present worker using tx.
func (w *Workflow) escalateTx(ctx context.Context, tx *sql.Tx, p model.Prescription) ([]string, error) {
	workers, err := w.accounts.ListLoggedInTx(ctx, tx, model.RoleCommunityHealthWorker)
	if err != nil {
		return nil, err
	}
	body := EscalationMessage(p.Patient, p.ID)
	for _, cw := range workers {
		m := model.Message{Sender: model.SystemSender, Receiver: cw, Body: body, SentAt: w.clock.Now()}
		if err := w.messages.CreateTx(ctx, tx, &m); err != nil {
			return nil, fmt.Errorf("notify %s: %w", cw, err)
		}
	}
	return workers, nil
}

// EscalationMessage is the text sent to workers for an unaffordable
// prescription.
func EscalationMessage(patient string, id uint64) string {
	return fmt.Sprintf("Patient %s needs assistance with prescription ID %d.", patient, id)
}

// ListFor returns every prescription of patient ordered by id.
func (w *Workflow) ListFor(ctx context.Context, patient string) ([]model.Prescription, error) {
	ctx, cancel := bounded(ctx, w.timeout)
	defer cancel()
	out, err := w.prescriptions.ListByPatient(ctx, patient)
	if err != nil {
		return nil, storeError(err)
	}
	return out, nil
}

// ListIssuedBy returns every prescription written by doctor ordered by id.
func (w *Workflow) ListIssuedBy(ctx context.Context, doctor string) ([]model.Prescription, error) {
	ctx, cancel := bounded(ctx, w.timeout)
	defer cancel()
	out, err := w.prescriptions.ListByDoctor(ctx, doctor)
	if err != nil {
		return nil, storeError(err)
	}
	return out, nil
}
