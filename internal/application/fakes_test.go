package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/videotube/videotube-api/internal/domain/apperr"
	"github.com/videotube/videotube-api/internal/domain/entity"
	"github.com/videotube/videotube-api/pkg/media"
)

// memUserRepo mirrors the Postgres repository semantics in memory: uniqueness
// on lower(username) and email enforced at insert time, and an atomic
// compare-and-swap for refresh-token rotation.
type memUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[string]*entity.User // keyed by ID
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*entity.User{}}
}

func (r *memUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.users {
		if strings.EqualFold(e.Username, u.Username) || e.Email == u.Email {
			return apperr.New(apperr.KindConflict, "username or email already exists")
		}
	}
	r.nextID++
	u.ID = fmt.Sprintf("user-%d", r.nextID)
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "user not found")
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Username, username) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.New(apperr.KindNotFound, "user not found")
}

func (r *memUserRepo) GetByIdentifier(_ context.Context, identifier string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Username, identifier) || u.Email == identifier {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.New(apperr.KindNotFound, "user not found")
}

func (r *memUserRepo) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Username, username) || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUserRepo) EmailTaken(_ context.Context, email, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUserRepo) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[u.ID]
	if !ok {
		return apperr.New(apperr.KindNotFound, "user not found")
	}
	stored.Email = u.Email
	stored.Fullname = u.Fullname
	stored.AvatarURL = u.AvatarURL
	stored.CoverImageURL = u.CoverImageURL
	return nil
}

func (r *memUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return apperr.New(apperr.KindNotFound, "user not found")
	}
	u.Password = passwordHash
	return nil
}

func (r *memUserRepo) SetRefreshToken(_ context.Context, id, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return apperr.New(apperr.KindNotFound, "user not found")
	}
	u.RefreshToken = token
	return nil
}

func (r *memUserRepo) ClearRefreshToken(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.RefreshToken = ""
	}
	return nil
}

func (r *memUserRepo) SwapRefreshToken(_ context.Context, id, old, new string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.RefreshToken != old {
		return false, nil
	}
	u.RefreshToken = new
	return true, nil
}

// stored returns the raw persisted record, bypassing the copy semantics.
func (r *memUserRepo) stored(id string) *entity.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id]
}

// fakeUploader records uploads and deletes; failFolders injects failures.
type fakeUploader struct {
	mu          sync.Mutex
	seq         int
	failFolders map[string]bool
	uploads     []string
	deletes     []string
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{failFolders: map[string]bool{}}
}

func (f *fakeUploader) Upload(_ context.Context, folder string, _ media.File) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFolders[folder] {
		return "", errors.New("store unavailable")
	}
	f.seq++
	url := fmt.Sprintf("https://media.test/%s/obj-%d", folder, f.seq)
	f.uploads = append(f.uploads, url)
	return url, nil
}

func (f *fakeUploader) Delete(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, url)
	return nil
}

func (f *fakeUploader) deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deletes...)
}

// memSubRepo stores subscription edges as a plain list; duplicates are
// possible and unsubscribe removes every matching edge.
type memSubRepo struct {
	mu    sync.Mutex
	edges [][2]string // {subscriberID, channelID}
}

func (r *memSubRepo) CountSubscribers(_ context.Context, channelID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, e := range r.edges {
		if e[1] == channelID {
			n++
		}
	}
	return n, nil
}

func (r *memSubRepo) CountSubscriptions(_ context.Context, subscriberID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, e := range r.edges {
		if e[0] == subscriberID {
			n++
		}
	}
	return n, nil
}

func (r *memSubRepo) IsSubscribed(_ context.Context, subscriberID, channelID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.edges {
		if e[0] == subscriberID && e[1] == channelID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memSubRepo) Toggle(_ context.Context, subscriberID, channelID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.edges[:0]
	removed := false
	for _, e := range r.edges {
		if e[0] == subscriberID && e[1] == channelID {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	r.edges = kept
	if removed {
		return false, nil
	}
	r.edges = append(r.edges, [2]string{subscriberID, channelID})
	return true, nil
}

// memVideoRepo holds a fixed catalog plus an append-only watch log.
type memVideoRepo struct {
	mu     sync.Mutex
	videos map[string]*entity.Video
	owners map[string]entity.VideoOwner // by owner ID
	log    [][2]string                  // {userID, videoID} in insertion order
}

func newMemVideoRepo() *memVideoRepo {
	return &memVideoRepo{
		videos: map[string]*entity.Video{},
		owners: map[string]entity.VideoOwner{},
	}
}

func (r *memVideoRepo) GetByID(_ context.Context, id string) (*entity.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "video not found")
	}
	cp := *v
	return &cp, nil
}

func (r *memVideoRepo) WatchHistory(_ context.Context, userID string) ([]entity.HistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []entity.HistoryEntry{}
	for _, rec := range r.log {
		if rec[0] != userID {
			continue
		}
		v := r.videos[rec[1]]
		out = append(out, entity.HistoryEntry{
			ID:           v.ID,
			Title:        v.Title,
			Description:  v.Description,
			ThumbnailURL: v.ThumbnailURL,
			Duration:     v.Duration,
			Views:        v.Views,
			CreatedAt:    v.CreatedAt,
			Owner:        r.owners[v.OwnerID],
		})
	}
	return out, nil
}

func (r *memVideoRepo) AddWatchEvent(_ context.Context, userID, videoID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = append(r.log, [2]string{userID, videoID})
	return nil
}
