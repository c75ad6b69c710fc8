package Storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"

	"TaskTracker/Connectivity"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"github.com/disintegration/imaging"
	"google.golang.org/api/option"
)

// Photos wider than this are downscaled before upload.
const maxPhotoWidth = 1600

var (
	bucket     *storage.BucketHandle
	bucketName string
	ctx        = context.Background()
)

// InitFirebase connects to the Firebase Storage bucket used for proof
// photos. Requires FIREBASE_CREDENTIALS_FILE and STORAGE_BUCKET; without
// them the server runs with photo uploads disabled.
func InitFirebase() error {
	credFile := os.Getenv("FIREBASE_CREDENTIALS_FILE")
	bucketName = os.Getenv("STORAGE_BUCKET")
	if credFile == "" || bucketName == "" {
		return fmt.Errorf("photo storage not configured (FIREBASE_CREDENTIALS_FILE, STORAGE_BUCKET)")
	}

	opt := option.WithCredentialsFile(credFile)
	app, err := firebase.NewApp(ctx, &firebase.Config{StorageBucket: bucketName}, opt)
	if err != nil {
		return fmt.Errorf("error initializing Firebase app: %v", err)
	}

	client, err := app.Storage(ctx)
	if err != nil {
		return fmt.Errorf("error getting Storage client: %v", err)
	}
	b, err := client.DefaultBucket()
	if err != nil {
		return fmt.Errorf("error resolving storage bucket: %v", err)
	}
	bucket = b
	log.Println("Firebase storage initialized successfully")
	return nil
}

// Enabled reports whether photo uploads are available.
func Enabled() bool {
	return bucket != nil
}

// TaskPhotoKey is the object key for an assigned-task proof photo.
func TaskPhotoKey(userID uint, date string, assignedTaskID uint) string {
	return fmt.Sprintf("task-photos/%d/%s/%d", userID, date, assignedTaskID)
}

// PersonalPhotoKey is the object key for a personal-task proof photo.
func PersonalPhotoKey(userID uint, date string, taskID uint) string {
	return fmt.Sprintf("personal-task-photos/%d/%s/%d", userID, date, taskID)
}

// UploadPhoto stores a proof photo under key and returns its fetchable URL.
// The image is decoded and downscaled first; any failure leaves nothing
// persisted, so the caller can abort the whole completion.
func UploadPhoto(key string, file *multipart.FileHeader) (string, error) {
	if bucket == nil {
		return "", fmt.Errorf("photo storage is not configured")
	}
	if Connectivity.Default != nil && !Connectivity.Default.Online() {
		return "", fmt.Errorf("backend is offline, try again later")
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("error opening upload: %v", err)
	}
	defer src.Close()

	data, err := processPhoto(src)
	if err != nil {
		return "", err
	}

	obj := bucket.Object(key)
	w := obj.NewWriter(ctx)
	w.ContentType = "image/jpeg"
	w.PredefinedACL = "publicRead"
	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", fmt.Errorf("error uploading photo: %v", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("error uploading photo: %v", err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucketName, key), nil
}

// processPhoto decodes the image, downscales it if it is wider than
// maxPhotoWidth and re-encodes it as JPEG.
func processPhoto(r io.Reader) ([]byte, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("unsupported image: %v", err)
	}

	if img.Bounds().Dx() > maxPhotoWidth {
		img = imaging.Resize(img, maxPhotoWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("error encoding photo: %v", err)
	}
	return buf.Bytes(), nil
}
