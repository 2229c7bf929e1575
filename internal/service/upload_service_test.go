package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharinglove/sharinglove-api/internal/dto"
	appErrors "github.com/sharinglove/sharinglove-api/pkg/errors"
	"github.com/sharinglove/sharinglove-api/pkg/storage"
)

type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	failOn  string
	deleted []string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeObjectStore) Put(_ context.Context, bucket storage.Bucket, key string, r io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if f.failOn != "" && strings.Contains(key, f.failOn) {
		return "", errors.New("bucket unavailable")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	path := string(bucket) + "/" + key
	f.objects[path] = data
	f.types[path] = contentType
	return "https://cdn.example/" + path, nil
}

func (f *fakeObjectStore) Delete(_ context.Context, bucket storage.Bucket, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := string(bucket) + "/" + key
	delete(f.objects, path)
	f.deleted = append(f.deleted, path)
	return nil
}

func (f *fakeObjectStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

func memFile(name, contentType string, size int64, content []byte) dto.UploadFile {
	return dto.UploadFile{
		Filename:    name,
		Size:        size,
		ContentType: contentType,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(content)), nil
		},
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestUploadService(store *fakeObjectStore) *UploadService {
	svc := NewUploadService(store, nil, nil, UploadConfig{})
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return svc
}

func TestUploadRejectsDisallowedExtension(t *testing.T) {
	store := newFakeObjectStore()
	svc := newTestUploadService(store)

	_, err := svc.Upload(context.Background(), []dto.UploadFile{
		memFile("report.pdf", "application/pdf", 10, []byte("%PDF-1.4")),
		memFile("malware.exe", "application/octet-stream", 10, []byte("MZ")),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrUploadRejected)
	assert.Contains(t, err.Error(), "malware.exe")
	assert.Zero(t, store.count())
}

func TestUploadEnforcesSizeCeilings(t *testing.T) {
	store := newFakeObjectStore()
	svc := newTestUploadService(store)

	_, err := svc.Upload(context.Background(), []dto.UploadFile{
		memFile("big.pdf", "application/pdf", 25<<20, []byte("%PDF-1.4")),
	})
	assert.ErrorIs(t, err, appErrors.ErrUploadRejected)
	assert.Contains(t, err.Error(), "big.pdf")

	_, err = svc.Upload(context.Background(), []dto.UploadFile{
		memFile("huge.jpg", "image/jpeg", 11<<20, []byte{0xff, 0xd8}),
	})
	assert.ErrorIs(t, err, appErrors.ErrUploadRejected)

	res, err := svc.Upload(context.Background(), []dto.UploadFile{
		memFile("photo.png", "image/png", 8<<20, pngBytes(t, 40, 20)),
	})
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	file := res.Files[0]
	assert.True(t, file.IsImage)
	assert.Equal(t, "photo.png", file.Filename)
	assert.Equal(t, int64(8<<20), file.Size)
	assert.True(t, strings.HasPrefix(file.URL, "https://cdn.example/images/1700000000000-"))
	require.NotNil(t, file.ThumbnailURL)
	assert.Contains(t, *file.ThumbnailURL, "/images/thumbs/")
	assert.True(t, strings.HasSuffix(*file.ThumbnailURL, "-photo.jpg"))
}

func TestUploadBatchLimits(t *testing.T) {
	svc := newTestUploadService(newFakeObjectStore())

	_, err := svc.Upload(context.Background(), nil)
	assert.ErrorIs(t, err, appErrors.ErrUploadRejected)

	files := make([]dto.UploadFile, 11)
	for i := range files {
		files[i] = memFile("a.pdf", "application/pdf", 1, []byte("x"))
	}
	_, err = svc.Upload(context.Background(), files)
	assert.ErrorIs(t, err, appErrors.ErrUploadRejected)
}

func TestUploadRollsBackOnStorageFailure(t *testing.T) {
	store := newFakeObjectStore()
	store.failOn = "broken"
	svc := newTestUploadService(store)

	_, err := svc.Upload(context.Background(), []dto.UploadFile{
		memFile("fine.pdf", "application/pdf", 8, []byte("%PDF-1.4")),
		memFile("also-fine.docx", "", 2, []byte("PK")),
		memFile("broken.pdf", "application/pdf", 8, []byte("%PDF-1.4")),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrStorageFailure)
	assert.Zero(t, store.count())
}

func TestUploadDocumentMimetypeAndBucket(t *testing.T) {
	store := newFakeObjectStore()
	svc := newTestUploadService(store)

	res, err := svc.Upload(context.Background(), []dto.UploadFile{
		memFile("2024 예산 (최종).PDF", "", 12, []byte("%PDF-1.4\n%abc")),
	})
	require.NoError(t, err)
	file := res.Files[0]
	assert.False(t, file.IsImage)
	assert.Nil(t, file.ThumbnailURL)
	assert.Equal(t, "application/pdf", file.Mimetype)
	assert.Contains(t, file.URL, "/documents/1700000000000-")
	assert.True(t, strings.HasSuffix(file.URL, "-2024_예산_최종_.PDF"))
	assert.Equal(t, "2024 예산 (최종).PDF", file.Filename)
}

func TestUploadUndecodableImageFallsBackToOriginalURL(t *testing.T) {
	store := newFakeObjectStore()
	svc := newTestUploadService(store)

	res, err := svc.Upload(context.Background(), []dto.UploadFile{
		memFile("broken.webp", "image/webp", 9, []byte("not-webp!")),
	})
	require.NoError(t, err)
	file := res.Files[0]
	require.NotNil(t, file.ThumbnailURL)
	assert.Equal(t, file.URL, *file.ThumbnailURL)
	assert.Equal(t, 1, store.count())
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct{ in, want string }{
		{"report.pdf", "report.pdf"},
		{"my  file (1).docx", "my_file_1_.docx"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\사진.jpg`, "사진.jpg"},
		{"a___b.png", "a_b.png"},
		{"\u1100\u1161.hwp", "가.hwp"},
		{"", "file"},
		{"emoji😀name.gif", "emoji_name.gif"},
		{"2024-결산 보고서.xlsx", "2024-결산_보고서.xlsx"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SanitizeFilename(tc.in), tc.in)
	}
}

func TestObjectKeyFormat(t *testing.T) {
	key, err := objectKey(time.UnixMilli(1700000000123), "공지 사항.pdf")
	require.NoError(t, err)
	parts := strings.SplitN(key, "-", 3)
	require.Len(t, parts, 3)
	assert.Equal(t, "1700000000123", parts[0])
	assert.Len(t, parts[1], 6)
	assert.Equal(t, "공지_사항.pdf", parts[2])
}
