package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"blogdeck/internal/types"
)

var (
	bucketBlogs         = []byte("blogs")
	bucketSession       = []byte("session")
	bucketNavState      = []byte("nav_state")
	bucketCommentCounts = []byte("comment_counts")
	bucketCounters      = []byte("counters")

	keyActiveSession = []byte("active")
	keySelection     = []byte("selection")
	keyUnseen        = []byte("unseen_notifications")
)

const subscriberBuffer = 16

type bboltRepository struct {
	db *bolt.DB

	mu          sync.Mutex
	order       []*types.Blog
	subscribers map[int]chan Event
	nextSubID   int
}

func NewBboltRepository(path string) (Repository, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("repository db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo := &bboltRepository{
		db:          db,
		subscribers: map[int]chan Event{},
	}
	order, err := repo.loadSortedBlogs()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	repo.order = order
	return repo, nil
}

func initSchema(db *bolt.DB) error {
	return db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketBlogs, bucketSession, bucketNavState, bucketCommentCounts, bucketCounters} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *bboltRepository) Blogs() BlogStore                 { return r }
func (r *bboltRepository) Sessions() SessionStore           { return r }
func (r *bboltRepository) NavState() NavStateStore          { return r }
func (r *bboltRepository) Comments() CommentStore           { return r }
func (r *bboltRepository) Notifications() NotificationStore { return r }

func (r *bboltRepository) Close() error {
	r.mu.Lock()
	for id, ch := range r.subscribers {
		close(ch)
		delete(r.subscribers, id)
	}
	r.mu.Unlock()
	return r.db.Close()
}

// Subscribe registers a listener for store events. The returned cancel
// function is idempotent. Slow listeners never block writers: when a
// listener's buffer overflows, the oldest event is dropped and a resync
// marker is queued so the listener reloads instead of trusting deltas.
func (r *bboltRepository) Subscribe() (<-chan Event, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextSubID
	r.nextSubID++
	ch := make(chan Event, subscriberBuffer)
	r.subscribers[id] = ch
	cancel := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if existing, ok := r.subscribers[id]; ok {
			close(existing)
			delete(r.subscribers, id)
		}
	}
	return ch, cancel
}

func (r *bboltRepository) publish(event Event) {
	for _, ch := range r.subscribers {
		select {
		case ch <- event:
			continue
		default:
		}
		// Buffer full: this listener is behind and its delta stream now has
		// a hole. Make room and leave a resync marker as the newest event.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- Event{Kind: EventResync}:
		default:
		}
	}
}

// --- BlogStore ---

func (r *bboltRepository) List(ctx context.Context) ([]*types.Blog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*types.Blog, len(r.order))
	for i, blog := range r.order {
		clone := *blog
		out[i] = &clone
	}
	return out, nil
}

func (r *bboltRepository) Get(ctx context.Context, id string) (*types.Blog, bool, error) {
	var blog *types.Blog
	err := r.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketBlogs).Get([]byte(id))
		if raw == nil {
			return nil
		}
		decoded := &types.Blog{}
		if err := json.Unmarshal(raw, decoded); err != nil {
			return err
		}
		blog = decoded
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return blog, blog != nil, nil
}

func (r *bboltRepository) Put(ctx context.Context, blog *types.Blog) (*types.Blog, error) {
	if blog == nil || strings.TrimSpace(blog.ID) == "" {
		return nil, errors.New("blog requires an id")
	}
	record := *blog
	record.ID = strings.TrimSpace(record.ID)
	record.Name = strings.TrimSpace(record.Name)
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.db.Update(func(tx *bolt.Tx) error {
		raw, err := json.Marshal(&record)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketBlogs).Put([]byte(record.ID), raw)
	})
	if err != nil {
		return nil, err
	}
	r.refreshOrderLocked()
	stored := record
	return &stored, nil
}

func (r *bboltRepository) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("blog id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	found := false
	err := r.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketBlogs)
		if bucket.Get([]byte(id)) == nil {
			return nil
		}
		found = true
		if err := bucket.Delete([]byte(id)); err != nil {
			return err
		}
		return tx.Bucket(bucketCommentCounts).Delete([]byte(id))
	})
	if err != nil {
		return err
	}
	if !found {
		return ErrBlogNotFound
	}
	r.refreshOrderLocked()
	return nil
}

func (r *bboltRepository) loadSortedBlogs() ([]*types.Blog, error) {
	var blogs []*types.Blog
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketBlogs).ForEach(func(_, raw []byte) error {
			blog := &types.Blog{}
			if err := json.Unmarshal(raw, blog); err != nil {
				return err
			}
			blogs = append(blogs, blog)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	types.SortBlogs(blogs)
	return blogs, nil
}

// refreshOrderLocked recomputes the display order, diffs it against the
// previous one, and publishes the resulting change set. Caller holds r.mu.
func (r *bboltRepository) refreshOrderLocked() {
	current, err := r.loadSortedBlogs()
	if err != nil {
		return
	}
	changes := DiffBlogOrders(r.order, current)
	r.order = current
	if changes.Empty() {
		return
	}
	r.publish(Event{Kind: EventBlogsChanged, Changes: changes})
}

// --- SessionStore ---

func (r *bboltRepository) GetSession(ctx context.Context) (*types.Session, bool, error) {
	var session *types.Session
	err := r.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketSession).Get(keyActiveSession)
		if raw == nil {
			return nil
		}
		decoded := &types.Session{}
		if err := json.Unmarshal(raw, decoded); err != nil {
			return err
		}
		session = decoded
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return session, session != nil, nil
}

func (r *bboltRepository) SetSession(ctx context.Context, session *types.Session) error {
	if session == nil || strings.TrimSpace(session.AccountID) == "" {
		return errors.New("session requires an account id")
	}
	record := *session
	if record.SignedInAt.IsZero() {
		record.SignedInAt = time.Now().UTC()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.db.Update(func(tx *bolt.Tx) error {
		raw, err := json.Marshal(&record)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketSession).Put(keyActiveSession, raw)
	})
	if err != nil {
		return err
	}
	published := record
	r.publish(Event{Kind: EventSessionChanged, Session: &published})
	return nil
}

func (r *bboltRepository) ClearSession(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSession).Delete(keyActiveSession)
	})
	if err != nil {
		return err
	}
	r.publish(Event{Kind: EventSessionChanged, Session: nil})
	return nil
}

// --- NavStateStore ---

func (r *bboltRepository) LoadNavState(ctx context.Context) (types.NavState, error) {
	state := types.NavState{}
	err := r.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketNavState).Get(keySelection)
		if raw == nil {
			return nil
		}
		return json.Unmarshal(raw, &state)
	})
	if err != nil {
		// A corrupt record is the same as no stored selection.
		return types.NavState{}, nil
	}
	return state, nil
}

func (r *bboltRepository) SaveNavState(ctx context.Context, state types.NavState) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		raw, err := json.Marshal(&state)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketNavState).Put(keySelection, raw)
	})
}

// --- CommentStore ---

func (r *bboltRepository) PendingComments(ctx context.Context, blogID string) (int, error) {
	count := 0
	err := r.db.View(func(tx *bolt.Tx) error {
		count = decodeCount(tx.Bucket(bucketCommentCounts).Get([]byte(blogID)))
		return nil
	})
	return count, err
}

func (r *bboltRepository) SetPendingComments(ctx context.Context, blogID string, count int) error {
	blogID = strings.TrimSpace(blogID)
	if blogID == "" {
		return errors.New("blog id is required")
	}
	if count < 0 {
		count = 0
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCommentCounts).Put([]byte(blogID), encodeCount(count))
	})
}

// --- NotificationStore ---

func (r *bboltRepository) UnseenCount(ctx context.Context) (int, error) {
	count := 0
	err := r.db.View(func(tx *bolt.Tx) error {
		count = decodeCount(tx.Bucket(bucketCounters).Get(keyUnseen))
		return nil
	})
	return count, err
}

func (r *bboltRepository) SetUnseenCount(ctx context.Context, count int) error {
	if count < 0 {
		count = 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCounters).Put(keyUnseen, encodeCount(count))
	})
	if err != nil {
		return err
	}
	r.publish(Event{Kind: EventUnseenChanged, Unseen: count})
	return nil
}

func encodeCount(count int) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(count))
	return buf[:]
}

func decodeCount(raw []byte) int {
	if len(raw) != 8 {
		return 0
	}
	return int(binary.BigEndian.Uint64(raw))
}
