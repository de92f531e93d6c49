package file

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoding
	"io"
	"math"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/storage"
	"golang.org/x/image/draw"
)

const (
	maxImageBytes    = 300 * 1024
	targetImageBytes = 200 * 1024
	minImageSide     = 800
)

type FileService interface {
	// UploadJustification stores a justification document and returns its storage key.
	// Images are re-encoded as JPEG and downscaled, PDFs are stored as-is.
	UploadJustification(ctx context.Context, employeeID string, date time.Time, punchType string, file io.Reader, filename string) (string, error)

	DeleteFile(ctx context.Context, path string) error
	GetFileURL(ctx context.Context, path string, expiry time.Duration) (string, error)
}

type fileServiceImpl struct {
	storage storage.FileStorage
}

func NewFileService(storage storage.FileStorage) FileService {
	return &fileServiceImpl{
		storage: storage,
	}
}

func (s *fileServiceImpl) UploadJustification(ctx context.Context, employeeID string, date time.Time, punchType string, file io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	var (
		body        io.Reader
		contentType string
	)
	switch ext {
	case ".pdf":
		body, contentType = file, "application/pdf"
	case ".jpg", ".jpeg", ".png":
		buffer, err := io.ReadAll(file)
		if err != nil {
			return "", fmt.Errorf("failed to read image: %w", err)
		}
		compressed, err := compressImage(buffer, maxImageBytes)
		if err != nil {
			return "", fmt.Errorf("failed to compress image: %w", err)
		}
		body, contentType, ext = bytes.NewReader(compressed), "image/jpeg", ".jpg"
	default:
		return "", fmt.Errorf("invalid file type: only jpg, jpeg, png, pdf allowed")
	}

	// justifications/{employeeID}/{date}/{punchType}-{uuid}.{ext}
	name := fmt.Sprintf("%s-%s%s", punchType, uuid.New().String(), ext)
	key := path.Join("justifications", employeeID, date.Format("2006-01-02"), name)

	uploaded, err := s.storage.Upload(ctx, body, key, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload justification: %w", err)
	}
	return uploaded, nil
}

func (s *fileServiceImpl) DeleteFile(ctx context.Context, path string) error {
	return s.storage.Delete(ctx, path)
}

func (s *fileServiceImpl) GetFileURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	return s.storage.GetURL(ctx, path, expiry)
}

// compressImage re-encodes buffer as JPEG no larger than maxSize when possible,
// lowering quality first and then downscaling while keeping the aspect ratio.
func compressImage(buffer []byte, maxSize int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(buffer))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	var compressed []byte
	for quality := 85; quality >= 55; quality -= 10 {
		compressed, err = encodeJPEG(img, quality)
		if err != nil {
			return nil, err
		}
		if len(compressed) <= maxSize {
			return compressed, nil
		}
	}

	bounds := img.Bounds()
	ratio := math.Sqrt(float64(targetImageBytes) / float64(len(compressed)))
	width := int(float64(bounds.Dx()) * ratio)
	height := int(float64(bounds.Dy()) * ratio)
	if shortest := min(width, height); shortest < minImageSide && shortest > 0 {
		scale := float64(minImageSide) / float64(shortest)
		width, height = int(float64(width)*scale), int(float64(height)*scale)
	}
	if width >= bounds.Dx() || height >= bounds.Dy() {
		return compressed, nil
	}

	return encodeJPEG(resizeImage(img, width, height), 70)
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// resizeImage scales src with CatmullRom interpolation.
func resizeImage(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}
