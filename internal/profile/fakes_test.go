package profile

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/profile-api/internal/avatar"
	"github.com/redmonkez12/profile-api/internal/logging"
	"github.com/redmonkez12/profile-api/internal/storage"
)

type fakeRecords struct {
	mu       sync.Mutex
	snaps    map[string]Snapshot
	getErr   error
	mergeErr error
	merges   []Fields
}

func newFakeRecords(userID string, snap Snapshot) *fakeRecords {
	return &fakeRecords{snaps: map[string]Snapshot{userID: snap}}
}

func (f *fakeRecords) Get(ctx context.Context, userID string) (Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	snap, ok := f.snaps[userID]
	if !ok {
		return nil, ErrNotFound
	}
	out := make(Snapshot, len(snap))
	for k, v := range snap {
		out[k] = v
	}
	return out, nil
}

func (f *fakeRecords) Merge(ctx context.Context, userID string, fields Fields) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mergeErr != nil {
		return f.mergeErr
	}
	snap, ok := f.snaps[userID]
	if !ok {
		return ErrNotFound
	}
	copied := make(Fields, len(fields))
	for k, v := range fields {
		copied[k] = v
		snap[k] = v
	}
	f.merges = append(f.merges, copied)
	return nil
}

func (f *fakeRecords) mergeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.merges)
}

type fakeStore struct {
	mu   sync.Mutex
	puts []storage.Object
	body [][]byte
	err  error
}

func (f *fakeStore) Put(ctx context.Context, obj storage.Object) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts = append(f.puts, obj)
	if f.err != nil {
		return "", f.err
	}
	data, _ := io.ReadAll(obj.Body)
	f.body = append(f.body, data)
	if obj.Progress != nil {
		obj.Progress(obj.Size, obj.Size)
	}
	return storage.PublicURL("http://cdn", "profiles", obj.Path, obj.Version), nil
}

type fakeNotifier struct {
	mu         sync.Mutex
	published  []string
	publishErr error
	subErr     error
	ticks      chan struct{}
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{ticks: make(chan struct{}, 8)}
}

func (f *fakeNotifier) Publish(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, userID)
	if f.publishErr != nil {
		return f.publishErr
	}
	select {
	case f.ticks <- struct{}{}:
	default:
	}
	return nil
}

func (f *fakeNotifier) Subscribe(ctx context.Context, userID string) (<-chan struct{}, error) {
	if f.subErr != nil {
		return nil, f.subErr
	}
	return f.ticks, nil
}

func testLogger() *logging.Logger {
	return logging.New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestService(records RecordStore, store storage.Store, notifier Notifier) *Service {
	return NewService(records, store, notifier, testLogger(), Options{
		PlaceholderImage: "http://cdn/placeholder.png",
		Avatar:           avatar.Options{MaxEdge: 64, Quality: 80},
	})
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: 10, G: uint8(x), B: uint8(y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func phoneUser() Snapshot {
	return Snapshot{
		FieldName:        "Asha",
		FieldDOB:         "01/02/1990",
		FieldEmail:       nil,
		FieldPhoneCode:   "+91",
		FieldPhoneNumber: "9876543210",
		FieldUserType:    "Phone",
		FieldTimestamp:   int64(1700000000000),
	}
}

func emailUser() Snapshot {
	return Snapshot{
		FieldName:      "Ben",
		FieldEmail:     "ben@example.com",
		FieldUserType:  "email",
		FieldTimestamp: int64(1700000000001),
	}
}
