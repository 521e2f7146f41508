package util

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// DetectMimeType 读取前 512 字节判断文件类型，并校验是否在允许范围内
func DetectMimeType(reader io.Reader, allowedTypes []string) (string, error) {
	buffer := make([]byte, 512)
	n, err := reader.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}

	mimeType := http.DetectContentType(buffer[:n])

	for _, allowed := range allowedTypes {
		if strings.HasPrefix(mimeType, allowed) || mimeType == allowed {
			return mimeType, nil
		}
	}

	return mimeType, errors.New("invalid file type: " + mimeType)
}

func IsImage(mimeType string) bool {
	return strings.HasPrefix(mimeType, MimeImage)
}

func IsVideo(mimeType string) bool {
	return strings.HasPrefix(mimeType, MimeVideo)
}

// SanitizeFilename 只保留字母数字、点和横线
func SanitizeFilename(name string) string {
	name = filepath.Base(name)
	return unsafeNameChars.ReplaceAllString(name, "_")
}

// UploadObjectName 生成 <folder>/<毫秒时间戳>-<文件名>
func UploadObjectName(folder, original string, now time.Time) string {
	return fmt.Sprintf("%s/%d-%s", folder, now.UnixMilli(), SanitizeFilename(original))
}
