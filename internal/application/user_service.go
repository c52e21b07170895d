package application

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/videotube/videotube-api/internal/domain/apperr"
	"github.com/videotube/videotube-api/internal/domain/entity"
	repo "github.com/videotube/videotube-api/internal/domain/repository"
	"github.com/videotube/videotube-api/pkg/helpers"
	"github.com/videotube/videotube-api/pkg/mailer"
	"github.com/videotube/videotube-api/pkg/media"
)

// UserService owns the credential store and the token lifecycle: registration,
// login, refresh rotation, logout, password change and profile updates.
type UserService struct {
	Repo            repo.UserRepository
	JWT             *helpers.JWTManager
	Media           media.Uploader
	Logger          *logrus.Logger
	Pub             *helpers.RabbitPublisher
	ES              *elasticsearch.Client
	ESChannelsIndex string
	MailEnabled     bool
}

func NewUserService(repo repo.UserRepository, jwt *helpers.JWTManager, uploader media.Uploader, logger *logrus.Logger, pub *helpers.RabbitPublisher, es *elasticsearch.Client, esChannelsIndex string, mailEnabled bool) *UserService {
	return &UserService{
		Repo:            repo,
		JWT:             jwt,
		Media:           uploader,
		Logger:          logger,
		Pub:             pub,
		ES:              es,
		ESChannelsIndex: esChannelsIndex,
		MailEnabled:     mailEnabled,
	}
}

// TokenPair is one issued access/refresh pair.
type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

type RegisterInput struct {
	Fullname string
	Username string
	Email    string
	Password string
	Avatar   *media.File
	Cover    *media.File
}

type uploadResult struct {
	url string
	err error
}

// Register creates a new identity. The avatar upload is mandatory, the cover
// optional; both run concurrently. Any object already stored is removed again
// when a later step fails.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	in.Fullname = strings.TrimSpace(in.Fullname)
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Email = strings.TrimSpace(in.Email)
	if in.Fullname == "" || in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, apperr.New(apperr.KindValidation, "all fields are required")
	}
	if in.Avatar == nil {
		return nil, apperr.New(apperr.KindUpload, "avatar is required")
	}

	// Best-effort fast fail; the unique indexes remain the real guard against
	// a concurrent registration racing past this check.
	exists, err := s.Repo.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.New(apperr.KindConflict, "username or email already exists")
	}

	avatarCh := make(chan uploadResult, 1)
	coverCh := make(chan uploadResult, 1)
	go func() {
		url, err := s.Media.Upload(ctx, "avatars", *in.Avatar)
		avatarCh <- uploadResult{url: url, err: err}
	}()
	go func() {
		if in.Cover == nil {
			coverCh <- uploadResult{}
			return
		}
		url, err := s.Media.Upload(ctx, "covers", *in.Cover)
		coverCh <- uploadResult{url: url, err: err}
	}()
	avatar, cover := <-avatarCh, <-coverCh

	// Stored objects are rolled back on every failing exit path below.
	committed := false
	defer func() {
		if committed {
			return
		}
		s.discard(avatar.url)
		s.discard(cover.url)
	}()

	if avatar.err != nil {
		return nil, apperr.Wrap(apperr.KindUpload, "avatar upload failed", avatar.err)
	}
	if cover.err != nil {
		return nil, apperr.Wrap(apperr.KindUpload, "cover image upload failed", cover.err)
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "password hash failed", err)
	}

	u := &entity.User{
		Username:      in.Username,
		Email:         in.Email,
		Fullname:      in.Fullname,
		Password:      hash,
		AvatarURL:     avatar.url,
		CoverImageURL: cover.url,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}
	committed = true

	s.enqueueWelcome(ctx, u)
	s.indexChannel(ctx, u)
	return u, nil
}

// discard deletes a stored media object, logging failures only.
func (s *UserService) discard(url string) {
	if url == "" {
		return
	}
	// The request context may already be cancelled; cleanup must still run.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Media.Delete(ctx, url); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("url", url).Warn("media rollback failed")
	}
}

// Authenticate validates an identifier (username or email) and password.
func (s *UserService) Authenticate(ctx context.Context, identifier, password string) (*entity.User, error) {
	if identifier == "" || password == "" {
		return nil, apperr.New(apperr.KindValidation, "username or email and password are required")
	}
	u, err := s.Repo.GetByIdentifier(ctx, identifier)
	if err != nil || u == nil {
		return nil, apperr.New(apperr.KindAuth, "invalid credentials")
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, apperr.New(apperr.KindAuth, "invalid credentials")
	}
	return u, nil
}

// IssueTokens generates a fresh pair and overwrites any previously stored
// refresh token: a second login silently invalidates the first session.
func (s *UserService) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(u)
	if err != nil {
		return TokenPair{}, apperr.Wrap(apperr.KindPersistence, "access token generation failed", err)
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID)
	if err != nil {
		return TokenPair{}, apperr.Wrap(apperr.KindPersistence, "refresh token generation failed", err)
	}
	if err := s.Repo.SetRefreshToken(ctx, u.ID, refresh); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// Login authenticates and issues a token pair.
func (s *UserService) Login(ctx context.Context, identifier, password string) (*entity.User, TokenPair, error) {
	u, err := s.Authenticate(ctx, identifier, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// Refresh rotates the presented refresh token. The stored value is replaced
// with compare-and-swap semantics: a rotation whose presented token no longer
// matches the stored one fails as stale instead of clobbering a concurrent
// rotation.
func (s *UserService) Refresh(ctx context.Context, presented string) (*entity.User, TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(presented)
	if err != nil {
		return nil, TokenPair{}, apperr.New(apperr.KindAuth, "invalid refresh token")
	}
	u, err := s.Repo.GetByID(ctx, claims.UserID)
	if err != nil || u == nil {
		return nil, TokenPair{}, apperr.New(apperr.KindAuth, "invalid refresh token")
	}
	if u.RefreshToken == "" || u.RefreshToken != presented {
		return nil, TokenPair{}, apperr.New(apperr.KindAuth, "refresh token expired or used")
	}

	access, aexp, err := s.JWT.GenerateAccessToken(u)
	if err != nil {
		return nil, TokenPair{}, apperr.Wrap(apperr.KindPersistence, "access token generation failed", err)
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID)
	if err != nil {
		return nil, TokenPair{}, apperr.Wrap(apperr.KindPersistence, "refresh token generation failed", err)
	}
	swapped, err := s.Repo.SwapRefreshToken(ctx, u.ID, presented, refresh)
	if err != nil {
		return nil, TokenPair{}, err
	}
	if !swapped {
		return nil, TokenPair{}, apperr.New(apperr.KindAuth, "refresh token expired or used")
	}
	return u, TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// Invalidate clears the stored refresh token. Idempotent.
func (s *UserService) Invalidate(ctx context.Context, userID string) error {
	return s.Repo.ClearRefreshToken(ctx, userID)
}

// GetByID loads a user for the session resolver and profile reads.
func (s *UserService) GetByID(ctx context.Context, userID string) (*entity.User, error) {
	return s.Repo.GetByID(ctx, userID)
}

// ChangePassword verifies the old password before rehashing the new one.
func (s *UserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return apperr.New(apperr.KindValidation, "old and new password are required")
	}
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !helpers.CompareHashAndPassword(u.Password, oldPassword) {
		return apperr.New(apperr.KindAuth, "incorrect old password")
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return apperr.Wrap(apperr.KindPersistence, "password hash failed", err)
	}
	return s.Repo.UpdatePassword(ctx, userID, hash)
}

// UpdateAccount changes fullname and/or email, refusing emails that belong to
// another identity.
func (s *UserService) UpdateAccount(ctx context.Context, userID, fullname, email string) (*entity.User, error) {
	fullname = strings.TrimSpace(fullname)
	email = strings.TrimSpace(email)
	if fullname == "" && email == "" {
		return nil, apperr.New(apperr.KindValidation, "fullname or email is required")
	}
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if email != "" && email != u.Email {
		taken, err := s.Repo.EmailTaken(ctx, email, userID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperr.New(apperr.KindConflict, "email already in use")
		}
		u.Email = email
	}
	if fullname != "" {
		u.Fullname = fullname
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}
	s.indexChannel(ctx, u)
	return u, nil
}

// UpdateAvatar replaces the avatar image; the previous object is discarded
// once the new reference is persisted.
func (s *UserService) UpdateAvatar(ctx context.Context, userID string, f media.File) (*entity.User, error) {
	return s.replaceImage(ctx, userID, f, "avatars", func(u *entity.User, url string) string {
		old := u.AvatarURL
		u.AvatarURL = url
		return old
	})
}

// UpdateCoverImage replaces the cover image.
func (s *UserService) UpdateCoverImage(ctx context.Context, userID string, f media.File) (*entity.User, error) {
	return s.replaceImage(ctx, userID, f, "covers", func(u *entity.User, url string) string {
		old := u.CoverImageURL
		u.CoverImageURL = url
		return old
	})
}

func (s *UserService) replaceImage(ctx context.Context, userID string, f media.File, folder string, swap func(*entity.User, string) string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	url, err := s.Media.Upload(ctx, folder, f)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpload, "image upload failed", err)
	}
	old := swap(u, url)
	if err := s.Repo.Update(ctx, u); err != nil {
		s.discard(url)
		return nil, err
	}
	s.discard(old)
	s.indexChannel(ctx, u)
	return u, nil
}

func (s *UserService) enqueueWelcome(ctx context.Context, u *entity.User) {
	if s.Pub == nil || !s.MailEnabled {
		return
	}
	job := mailer.WelcomeJob(u.Email, u.Fullname, u.Username)
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("welcome email enqueue failed")
	}
}

// indexChannel pushes the channel document to Elasticsearch. Best-effort:
// failures are logged, never surfaced.
func (s *UserService) indexChannel(ctx context.Context, u *entity.User) {
	if s.ES == nil || s.ESChannelsIndex == "" {
		return
	}
	doc := map[string]any{
		"id":         u.ID,
		"username":   u.Username,
		"fullname":   u.Fullname,
		"avatar":     u.AvatarURL,
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESChannelsIndex, DocumentID: u.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("channel index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("channel index response error")
	}
}
