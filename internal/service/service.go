// Package service implements the telehealth domain: accounts and presence,
// the message log, the prescription workflow with its escalation, and the
// per-connection sessions that scope every command to one identity.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/iliyamo/telehealth-core/internal/authorize"
	"github.com/iliyamo/telehealth-core/internal/diagnosis"
	"github.com/iliyamo/telehealth-core/internal/model"
	"github.com/iliyamo/telehealth-core/internal/video"
)

// Service is the facade used by transports.  Session-scoped methods take
// the session id returned by BindSession.
type Service struct {
	Directory     *Directory
	Messages      *MessageLog
	Prescriptions *Workflow
	Sessions      *Sessions

	policy    *authorize.Policy
	video     video.Provider
	diagnosis *diagnosis.Service
	log       *slog.Logger
}

// Deps wires a Service.  Video and Diagnosis are optional; without them
// the matching calls fail with ErrUnavailable.
type Deps struct {
	Accounts      AccountStore
	Messages      MessageStore
	Prescriptions PrescriptionStore
	Policy        *authorize.Policy
	Publisher     EscalationPublisher
	Video         video.Provider
	Diagnosis     *diagnosis.Service
	BcryptCost    int
	StoreTimeout  time.Duration

	// PublishTimeout bounds the escalation event publish; zero uses a
	// short default.
	PublishTimeout time.Duration
	Log            *slog.Logger
}

func New(d Deps) *Service {
	dir := NewDirectory(d.Accounts, d.BcryptCost, d.StoreTimeout, d.Log)
	return &Service{
		Directory: dir,
		Messages:  NewMessageLog(d.Messages, d.StoreTimeout),
		Prescriptions: NewWorkflow(WorkflowDeps{
			Accounts:       d.Accounts,
			Messages:       d.Messages,
			Prescriptions:  d.Prescriptions,
			Policy:         d.Policy,
			Publisher:      d.Publisher,
			StoreTimeout:   d.StoreTimeout,
			PublishTimeout: d.PublishTimeout,
			Log:            d.Log,
		}),
		Sessions:  NewSessions(dir, d.Policy),
		policy:    d.Policy,
		video:     d.Video,
		diagnosis: d.Diagnosis,
		log:       d.Log,
	}
}

func (s *Service) Register(ctx context.Context, username, password string, role model.Role) error {
	return s.Directory.Register(ctx, username, password, role)
}

func (s *Service) Authenticate(ctx context.Context, username, password string) (model.Account, error) {
	return s.Directory.Authenticate(ctx, username, password)
}

func (s *Service) Logout(ctx context.Context, username string) error {
	return s.Directory.Logout(ctx, username)
}

func (s *Service) ListPresent(ctx context.Context, role model.Role) ([]string, error) {
	return s.Directory.ListPresent(ctx, role)
}

// BindSession opens a session for an authenticated account.
func (s *Service) BindSession(acc model.Account) (model.Session, error) {
	if !acc.IsLoggedIn {
		return model.Session{}, ErrInvalidCredentials
	}
	_, sess, err := s.Sessions.Open(acc.Username, acc.Role)
	return sess, err
}

// Login authenticates and binds a session in one step.
func (s *Service) Login(ctx context.Context, username, password string) (model.Account, model.Session, error) {
	acc, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return model.Account{}, model.Session{}, err
	}
	sess, err := s.BindSession(acc)
	if err != nil {
		return model.Account{}, model.Session{}, err
	}
	s.log.Info("session bound", slog.String("username", acc.Username), slog.String("session_id", sess.ID))
	return acc, sess, nil
}

// Session returns the current state of session sid.
func (s *Service) Session(sid string) (model.Session, error) {
	c, err := s.Sessions.Get(sid)
	if err != nil {
		return model.Session{}, err
	}
	sess, ok := c.Current()
	if !ok {
		return model.Session{}, ErrNotBound
	}
	return sess, nil
}

func (s *Service) SetPeer(ctx context.Context, sid, peer string) (model.Session, error) {
	c, err := s.Sessions.Get(sid)
	if err != nil {
		return model.Session{}, err
	}
	return c.SetChatPeer(ctx, peer)
}

func (s *Service) SetChatMode(sid string, mode model.ChatMode) (model.Session, error) {
	c, err := s.Sessions.Get(sid)
	if err != nil {
		return model.Session{}, err
	}
	return c.SetChatMode(mode)
}

// EndSession tears the session down and logs its identity out.
func (s *Service) EndSession(ctx context.Context, sid string) error {
	return s.Sessions.Close(ctx, sid)
}

// SendMessage appends body from the session identity to its chat peer.
// Only the escalation path may write as the System sender.
func (s *Service) SendMessage(ctx context.Context, sid, body string) (model.Message, error) {
	sess, err := s.withPeer(sid)
	if err != nil {
		return model.Message{}, err
	}
	if model.IsSystemName(sess.Identity) {
		return model.Message{}, ErrInvalidActor
	}
	return s.Messages.Append(ctx, sess.Identity, sess.ChatPeer, body)
}

// GetHistory returns the conversation with the current chat peer.
func (s *Service) GetHistory(ctx context.Context, sid string) ([]model.Message, error) {
	sess, err := s.withPeer(sid)
	if err != nil {
		return nil, err
	}
	return s.Messages.History(ctx, sess.Identity, sess.ChatPeer)
}

// Inbox returns the System messages addressed to the session identity.
func (s *Service) Inbox(ctx context.Context, sid string) ([]model.Message, error) {
	sess, err := s.Session(sid)
	if err != nil {
		return nil, err
	}
	return s.Messages.History(ctx, model.SystemSender, sess.Identity)
}

// IssuePrescription writes a prescription from the session's doctor.  An
// empty patient means the current chat peer.
func (s *Service) IssuePrescription(ctx context.Context, sid, patient, text string) (model.Prescription, error) {
	sess, err := s.Session(sid)
	if err != nil {
		return model.Prescription{}, err
	}
	if !s.policy.CanIssuePrescription(sess.Role) {
		return model.Prescription{}, ErrInvalidActor
	}
	if patient == "" {
		if sess.ChatPeer == "" {
			return model.Prescription{}, ErrNoPeer
		}
		patient = sess.ChatPeer
	}
	return s.Prescriptions.Issue(ctx, sess.Identity, patient, text)
}

// RecordAffordability lets the patient of prescription id answer whether
// they can afford it.
func (s *Service) RecordAffordability(ctx context.Context, sid string, id uint64, canAfford bool) (Resolution, error) {
	sess, err := s.Session(sid)
	if err != nil {
		return Resolution{}, err
	}
	if !s.policy.CanResolvePrescription(sess.Role) {
		return Resolution{}, ErrInvalidActor
	}
	p, err := s.Prescriptions.Get(ctx, id)
	if err != nil {
		return Resolution{}, err
	}
	if p.Patient != sess.Identity {
		return Resolution{}, ErrInvalidActor
	}
	return s.Prescriptions.RecordAffordability(ctx, id, canAfford)
}

// ListPrescriptions returns the patient's prescriptions, or for a doctor
// the ones they issued.
func (s *Service) ListPrescriptions(ctx context.Context, sid string) ([]model.Prescription, error) {
	sess, err := s.Session(sid)
	if err != nil {
		return nil, err
	}
	switch sess.Role {
	case model.RolePatient:
		return s.Prescriptions.ListFor(ctx, sess.Identity)
	case model.RoleDoctor:
		return s.Prescriptions.ListIssuedBy(ctx, sess.Identity)
	default:
		return nil, ErrInvalidActor
	}
}

// StartVideoCall switches the session to video and starts a call with the
// current peer.
func (s *Service) StartVideoCall(ctx context.Context, sid string) (video.Call, error) {
	if s.video == nil {
		return video.Call{}, ErrUnavailable
	}
	sess, err := s.withPeer(sid)
	if err != nil {
		return video.Call{}, err
	}
	call, err := s.video.StartCall(ctx, sess.Identity, sess.ChatPeer)
	if err != nil {
		return video.Call{}, err
	}
	if _, err := s.SetChatMode(sid, model.ChatModeVideo); err != nil {
		return video.Call{}, err
	}
	s.log.Info("video call started", slog.String("host", call.Host), slog.String("guest", call.Guest), slog.String("room", call.Room))
	return call, nil
}

// Diagnose runs the symptom predictor.
func (s *Service) Diagnose(ctx context.Context, symptoms []string) (diagnosis.Result, error) {
	if s.diagnosis == nil {
		return diagnosis.Result{}, ErrUnavailable
	}
	res, err := s.diagnosis.Diagnose(ctx, symptoms)
	if errors.Is(err, diagnosis.ErrNoSymptoms) {
		return diagnosis.Result{}, errors.Join(ErrInvalidInput, err)
	}
	return res, err
}

func (s *Service) withPeer(sid string) (model.Session, error) {
	sess, err := s.Session(sid)
	if err != nil {
		return model.Session{}, err
	}
	if sess.ChatPeer == "" {
		return model.Session{}, ErrNoPeer
	}
	return sess, nil
}
