// Package customer validates and stores intake form submissions.
package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/customer-intake-api/internal/domain"
	"github.com/customer-intake-api/internal/pkg/id"
	"github.com/customer-intake-api/internal/pkg/phone"
)

// ShopTimeZone is the zone in which ages are computed.
const ShopTimeZone = "America/Barbados"

// shopLocation cannot fail to load: time/tzdata embeds the zone database.
var shopLocation = mustLoadLocation(ShopTimeZone)

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic("load time zone " + name + ": " + err.Error())
	}
	return loc
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type Service interface {
	Register(ctx context.Context, req domain.CreateCustomerRequest) (*domain.Customer, error)
	Get(ctx context.Context, customerID string) (*domain.Customer, error)
	List(ctx context.Context, limit int, cursor string) (*domain.CustomerPage, error)
}

type customerStore interface {
	Put(ctx context.Context, c *domain.Customer) error
	Get(ctx context.Context, customerID string) (*domain.Customer, error)
	ExistsByWhatsApp(ctx context.Context, phone string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Page(ctx context.Context, limit int32, cursor string) (*domain.CustomerPage, error)
}

type verificationLookup interface {
	LatestVerified(ctx context.Context, phone string) (*domain.Verification, error)
}

type service struct {
	repo                 customerStore
	verifications        verificationLookup
	requireVerifiedPhone bool
	verificationWindow   time.Duration
	loc                  *time.Location
	now                  func() time.Time
}

type ServiceDeps struct {
	Repo                 customerStore
	Verifications        verificationLookup
	RequireVerifiedPhone bool
	VerificationWindow   time.Duration
	Now                  func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		repo:                 deps.Repo,
		verifications:        deps.Verifications,
		requireVerifiedPhone: deps.RequireVerifiedPhone,
		verificationWindow:   deps.VerificationWindow,
		loc:                  shopLocation,
		now:                  deps.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// today is the current calendar date in the shop's zone, at UTC midnight so it
// compares directly with parsed YYYY-MM-DD dates.
func (s *service) today() time.Time {
	y, m, d := s.now().In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *service) Register(ctx context.Context, req domain.CreateCustomerRequest) (*domain.Customer, error) {
	today := s.today()
	if errs := checkRequest(&req, today); len(errs) > 0 {
		return nil, errs
	}

	whatsapp := phone.Normalize(req.WhatsAppNumber)
	if s.requireVerifiedPhone {
		if err := s.checkVerified(ctx, whatsapp); err != nil {
			return nil, err
		}
	}

	taken, err := s.repo.ExistsByWhatsApp(ctx, whatsapp)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrWhatsAppTaken
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email != "" {
		taken, err := s.repo.ExistsByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, domain.ErrEmailTaken
		}
	}

	c := buildCustomer(&req, whatsapp, email, today, s.now().UTC())
	if err := s.repo.Put(ctx, c); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "customer registered", "customer_id", c.CustomerID, "phone", c.WhatsAppNumber, "is_minor", c.IsMinor)
	return c, nil
}

func (s *service) checkVerified(ctx context.Context, whatsapp string) error {
	v, err := s.verifications.LatestVerified(ctx, whatsapp)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("phone number not verified: %w", domain.ErrForbidden)
	}
	if err != nil {
		return err
	}
	if v.VerifiedAt == nil || s.now().Sub(*v.VerifiedAt) > s.verificationWindow {
		return fmt.Errorf("phone number not verified: %w", domain.ErrForbidden)
	}
	return nil
}

func buildCustomer(req *domain.CreateCustomerRequest, whatsapp, email string, today, now time.Time) *domain.Customer {
	dob, _ := birthDate(req.DOB, today)
	c := &domain.Customer{
		CustomerID:      id.New(),
		FullName:        formatName(req.FullName),
		DateOfBirth:     req.DOB,
		WhatsAppNumber:  whatsapp,
		IsMinor:         ageOn(dob, today) < adultAge,
		TermsAccepted:   true,
		TermsAcceptedAt: now,
		ShopCategories:  []string{domain.CategoryVideoGames},
		GiftCards:       []domain.GiftCardPick{},
		Consoles:        nonNil(req.SelectedConsoles),
		RetroConsoles:   nonNil(req.SelectedRetroConsoles),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if email != "" {
		c.Email = &email
	}
	if req.PurchaseGiftCards == "yes" {
		c.ShopCategories = append(c.ShopCategories, domain.CategoryGiftCards)
		for _, cardID := range req.SelectedGiftCards {
			pick := domain.GiftCardPick{ID: cardID}
			if u := strings.ToLower(strings.TrimSpace(req.GiftCardUsernames[cardID])); u != "" {
				pick.Username = &u
			}
			c.GiftCards = append(c.GiftCards, pick)
		}
	}
	if name := strings.TrimSpace(req.GuardianFullName); name != "" {
		name = formatName(name)
		c.GuardianFullName = &name
	}
	if req.GuardianDOB != "" {
		g := req.GuardianDOB
		c.GuardianDateOfBirth = &g
	}
	if g := strings.TrimSpace(req.GuardianWhatsAppNumber); g != "" {
		g = phone.Normalize(g)
		c.GuardianWhatsAppNumber = &g
	}
	return c
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (s *service) Get(ctx context.Context, customerID string) (*domain.Customer, error) {
	return s.repo.Get(ctx, customerID)
}

func (s *service) List(ctx context.Context, limit int, cursor string) (*domain.CustomerPage, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return s.repo.Page(ctx, int32(limit), cursor)
}
