package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sifan077/snipr/internal/app/model"
	"github.com/sifan077/snipr/internal/app/repository"
	"github.com/sifan077/snipr/internal/app/workflow"
	"go.uber.org/zap"
)

const maxCodeAttempts = 5

var (
	// ErrAliasTaken is returned when the requested custom alias already exists.
	ErrAliasTaken = errors.New("alias taken")

	// ErrLinkExpired is returned when a link exists but is past its expiry.
	ErrLinkExpired = errors.New("link expired")

	// ErrInvalidExpiration covers unparsable dates and custom dates before tomorrow.
	ErrInvalidExpiration = errors.New("invalid expiration date")

	// ErrCodeSpaceExhausted means no free random code was found.
	ErrCodeSpaceExhausted = errors.New("could not allocate a short code")
)

// LinkService defines behaviour-level operations on links.
type LinkService interface {
	CreateLink(ctx context.Context, req model.LinkRequest) (*model.Link, error)
	ResolveLink(ctx context.Context, code string) (*model.Link, error)
}

// Metrics receives link lifecycle events.
type Metrics interface {
	LinkCreated()
	ObserveCache(hit bool)
}

type nopMetrics struct{}

func (nopMetrics) LinkCreated()      {}
func (nopMetrics) ObserveCache(bool) {}

// Deps groups the collaborators of the link service. Cache and Filter are optional.
type Deps struct {
	Repo       repository.LinkRepository
	Cache      repository.LinkCache
	Filter     *AliasFilter
	Logger     *zap.Logger
	Metrics    Metrics
	Clock      func() time.Time
	CodeLength int
	CacheTTL   time.Duration
}

type linkService struct {
	repo       repository.LinkRepository
	cache      repository.LinkCache
	filter     *AliasFilter
	logger     *zap.Logger
	metrics    Metrics
	clock      func() time.Time
	codeLength int
	cacheTTL   time.Duration
}

// NewLinkService returns a service implementation backed by the given repository.
func NewLinkService(deps Deps) LinkService {
	s := &linkService{
		repo:       deps.Repo,
		cache:      deps.Cache,
		filter:     deps.Filter,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
		clock:      deps.Clock,
		codeLength: deps.CodeLength,
		cacheTTL:   deps.CacheTTL,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.metrics == nil {
		s.metrics = nopMetrics{}
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.codeLength <= 0 {
		s.codeLength = DefaultCodeLength
	}
	s.logger = s.logger.Named("links")
	return s
}

func (s *linkService) CreateLink(ctx context.Context, req model.LinkRequest) (*model.Link, error) {
	now := s.clock()

	expiresAt, err := s.resolveExpiry(req, now)
	if err != nil {
		return nil, err
	}

	link := &model.Link{
		URL:              req.URL,
		ExpirationOption: req.ExpirationOption,
		ExpiresAt:        expiresAt,
	}

	if req.CustomAlias != "" {
		err = s.createWithAlias(ctx, link, req.CustomAlias)
	} else {
		err = s.createWithRandomCode(ctx, link)
	}
	if err != nil {
		return nil, err
	}

	if s.filter != nil {
		s.filter.Add(link.Code)
	}
	s.metrics.LinkCreated()
	s.logger.Info("link created",
		zap.String("code", link.Code),
		zap.String("option", link.ExpirationOption.String()),
		zap.Bool("custom_alias", req.CustomAlias != ""),
	)
	return link, nil
}

func (s *linkService) resolveExpiry(req model.LinkRequest, now time.Time) (*time.Time, error) {
	var date time.Time
	if req.ExpirationOption.RequiresDate() {
		if req.ExpirationDate == nil || *req.ExpirationDate == "" {
			return nil, fmt.Errorf("%w: %w", ErrInvalidExpiration, workflow.ErrMissingDate)
		}
		if *req.ExpirationDate < workflow.MinExpirationDate(now) {
			return nil, fmt.Errorf("%w: %s is before tomorrow", ErrInvalidExpiration, *req.ExpirationDate)
		}
		d, err := workflow.ParseDate(*req.ExpirationDate, now.Location())
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidExpiration, err)
		}
		date = d
	}

	expiresAt, err := workflow.ExpiresAt(req.ExpirationOption, date, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidExpiration, err)
	}
	return expiresAt, nil
}

func (s *linkService) createWithAlias(ctx context.Context, link *model.Link, alias string) error {
	if s.filter != nil && s.filter.MightExist(alias) {
		exists, err := s.repo.Exists(ctx, alias)
		if err != nil {
			return fmt.Errorf("check alias: %w", err)
		}
		if exists {
			return ErrAliasTaken
		}
	}

	link.Code = alias
	if err := s.repo.Create(ctx, link); err != nil {
		if errors.Is(err, repository.ErrCodeTaken) {
			return ErrAliasTaken
		}
		return fmt.Errorf("create link: %w", err)
	}
	return nil
}

func (s *linkService) createWithRandomCode(ctx context.Context, link *model.Link) error {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := generateCode(s.codeLength)
		if s.filter != nil && s.filter.MightExist(code) {
			continue
		}

		link.Code = code
		err := s.repo.Create(ctx, link)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrCodeTaken) {
			return fmt.Errorf("create link: %w", err)
		}
		s.logger.Debug("code collision", zap.String("code", code), zap.Int("attempt", attempt+1))
	}
	return ErrCodeSpaceExhausted
}

func (s *linkService) ResolveLink(ctx context.Context, code string) (*model.Link, error) {
	now := s.clock()

	if s.cache != nil {
		link, err := s.cache.Get(ctx, code)
		switch {
		case err == nil:
			s.metrics.ObserveCache(true)
			return checkExpiry(link, now)
		case errors.Is(err, repository.ErrCacheMiss):
			s.metrics.ObserveCache(false)
		default:
			s.logger.Warn("cache lookup failed", zap.String("code", code), zap.Error(err))
		}
	}

	link, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("get link: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, link, s.cacheTTLFor(link, now)); err != nil {
			s.logger.Warn("cache store failed", zap.String("code", code), zap.Error(err))
		}
	}

	return checkExpiry(link, now)
}

// cacheTTLFor bounds the configured TTL by the link's remaining lifetime.
func (s *linkService) cacheTTLFor(link *model.Link, now time.Time) time.Duration {
	ttl := s.cacheTTL
	if link.ExpiresAt != nil {
		if remaining := link.ExpiresAt.Sub(now); remaining < ttl {
			ttl = remaining
		}
	}
	return ttl
}

func checkExpiry(link *model.Link, now time.Time) (*model.Link, error) {
	if link.Expired(now) {
		return link, ErrLinkExpired
	}
	return link, nil
}
