package helpers

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const EventsFolder = "kluub-events"

// Width-limited, auto-quality, auto-format delivery for event images.
const uploadTransformation = "w_1920,c_limit/q_auto:good/f_auto"

var publicIDPattern = regexp.MustCompile(`/upload/(?:v\d+/)?(.+)\.[^.]+$`)

// UploadImage pushes one image to Cloudinary and returns its secure URL.
func UploadImage(ctx context.Context, cld *cloudinary.Cloudinary, file io.Reader) (string, error) {
	uploadResult, err := cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:         EventsFolder,
		ResourceType:   "image",
		Transformation: uploadTransformation,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %v", err)
	}
	if uploadResult.SecureURL == "" {
		return "", fmt.Errorf("cloudinary returned an empty URL")
	}
	return uploadResult.SecureURL, nil
}

// ExtractPublicID pulls the Cloudinary public id out of a delivery URL.
// Format: https://res.cloudinary.com/{cloud}/image/upload/v{version}/{folder}/{public_id}.{ext}
func ExtractPublicID(url string) (string, error) {
	if !strings.Contains(url, "res.cloudinary.com") {
		return "", fmt.Errorf("not a cloudinary URL: %q", url)
	}
	match := publicIDPattern.FindStringSubmatch(url)
	if match == nil {
		return "", fmt.Errorf("could not parse public id from %q", url)
	}
	return match[1], nil
}

// DeleteImage removes an uploaded image given its delivery URL.
func DeleteImage(ctx context.Context, cld *cloudinary.Cloudinary, url string) error {
	publicID, err := ExtractPublicID(url)
	if err != nil {
		return err
	}
	_, err = cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("failed to delete image %s: %v", publicID, err)
	}
	return nil
}
