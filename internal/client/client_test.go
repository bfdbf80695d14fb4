package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/profile-api/internal/httputil"
	"github.com/redmonkez12/profile-api/internal/profile"
	"github.com/redmonkez12/profile-api/internal/storage"
)

func TestProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/profile", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		httputil.RespondJSON(w, profile.View{UserID: "u1", Name: "Asha"}, http.StatusOK)
	}))
	defer srv.Close()

	view, err := New(srv.URL+"/", "tok", srv.Client()).Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Asha", view.Name)
}

func TestProfile_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondErrorWithCode(w, "profile not found", httputil.CodeProfileNotFound, http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "tok", srv.Client()).Profile(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, httputil.CodeProfileNotFound, apiErr.Code)
	assert.Equal(t, "profile not found", apiErr.Error())
}

func TestSave_JSONWithoutImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req profile.UpdateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Asha", req.Name)
		assert.Equal(t, "+91", req.PhoneCode)

		httputil.RespondJSON(w, profile.UpdateResponse{Message: "Updated..."}, http.StatusOK)
	}))
	defer srv.Close()

	resp, err := New(srv.URL, "tok", srv.Client()).Save(context.Background(), Update{Name: "Asha", PhoneCode: "+91"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Updated...", resp.Message)
	assert.False(t, resp.ImageUploaded)
}

func TestSave_MultipartWithImageReportsProgress(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "me.png")
	require.NoError(t, os.WriteFile(imagePath, []byte("\x89PNG\r\n\x1a\nfake"), 0o600))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Asha", r.FormValue("name"))

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "me.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))

		httputil.RespondJSON(w, profile.UpdateResponse{Message: "Updated...", ImageUploaded: true}, http.StatusOK)
	}))
	defer srv.Close()

	// the transport sends the body from its own goroutine
	var mu sync.Mutex
	var last float64
	resp, err := New(srv.URL, "tok", srv.Client()).Save(context.Background(),
		Update{Name: "Asha", ImagePath: imagePath},
		func(sent, total int64) {
			mu.Lock()
			last = storage.Percent(sent, total)
			mu.Unlock()
		},
	)
	require.NoError(t, err)
	assert.True(t, resp.ImageUploaded)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, float64(100), last)
}

func TestSave_MissingImageFile(t *testing.T) {
	_, err := New("http://unused", "tok", nil).Save(context.Background(), Update{ImagePath: "/does/not/exist.png"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read image")
}

func TestSave_UploadFailureMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondErrorWithCode(w, "Failed to upload due to bucket missing", httputil.CodeUploadFailed, http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "tok", srv.Client()).Save(context.Background(), Update{Name: "A"}, nil)
	require.Error(t, err)
	assert.Equal(t, "Failed to upload due to bucket missing", err.Error())
}

func TestWatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: profile\ndata: {\"uid\":\"u1\",\"name\":\"A\"}\n\n")
		fmt.Fprint(w, ": ping\n\n")
		fmt.Fprint(w, "event: other\ndata: {}\n\n")
		fmt.Fprint(w, "event: profile\ndata: {\"uid\":\"u1\",\"name\":\"B\"}\n\n")
	}))
	defer srv.Close()

	var names []string
	err := New(srv.URL, "tok", srv.Client()).Watch(context.Background(), func(v *profile.View) {
		names = append(names, v.Name)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, names)
}

func TestWatch_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := New(srv.URL, "", srv.Client()).Watch(context.Background(), func(*profile.View) {})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestReadEvents_MultilineData(t *testing.T) {
	var got []string
	err := readEvents(strings.NewReader("data: a\ndata: b\n\nevent: x\n\n"), func(event string, data []byte) error {
		got = append(got, event+"="+string(data))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"message=a\nb"}, got)
}

func TestReadEvents_StopsOnCallbackError(t *testing.T) {
	err := readEvents(strings.NewReader("data: a\n\ndata: b\n\n"), func(string, []byte) error {
		return io.ErrUnexpectedEOF
	})
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
