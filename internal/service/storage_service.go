package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
	"zorides_backend/internal/config"
	"zorides_backend/internal/util"
	"zorides_backend/pkg/logger"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// StorageProvider 上传文件的存储后端
type StorageProvider interface {
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error)
	UploadFile(ctx context.Context, objectName string, localPath string, contentType string) (string, error)
	Delete(ctx context.Context, objectName string) error
	GetURL(objectName string) string
}

// LocalStorageProvider 写入本地目录，通过 /uploads 静态路由访问
type LocalStorageProvider struct {
	Root string
}

func (p *LocalStorageProvider) path(objectName string) string {
	return filepath.Join(p.Root, filepath.FromSlash(objectName))
}

func (p *LocalStorageProvider) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	dst := p.path(objectName)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		return "", err
	}
	return p.GetURL(objectName), nil
}

func (p *LocalStorageProvider) UploadFile(ctx context.Context, objectName string, localPath string, contentType string) (string, error) {
	dst := p.path(objectName)
	if localPath == dst {
		return p.GetURL(objectName), nil
	}

	src, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer src.Close()
	return p.Upload(ctx, objectName, src, -1, contentType)
}

func (p *LocalStorageProvider) Delete(ctx context.Context, objectName string) error {
	return os.Remove(p.path(objectName))
}

func (p *LocalStorageProvider) GetURL(objectName string) string {
	return "/uploads/" + objectName
}

type MinioStorageProvider struct {
	Bucket string
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Bucket: cfg.MinioBucket, Client: client}, nil
}

func (p *MinioStorageProvider) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := p.Client.PutObject(ctx, p.Bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return p.GetURL(objectName), nil
}

func (p *MinioStorageProvider) UploadFile(ctx context.Context, objectName string, localPath string, contentType string) (string, error) {
	_, err := p.Client.FPutObject(ctx, p.Bucket, objectName, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return p.GetURL(objectName), nil
}

func (p *MinioStorageProvider) Delete(ctx context.Context, objectName string) error {
	return p.Client.RemoveObject(ctx, p.Bucket, objectName, minio.RemoveObjectOptions{})
}

func (p *MinioStorageProvider) GetURL(objectName string) string {
	return "/" + p.Bucket + "/" + objectName
}

// OSSStorageProvider 阿里云 OSS
type OSSStorageProvider struct {
	Endpoint string
	Bucket   *oss.Bucket
}

func NewOSSStorageProvider(cfg *config.StorageConfig) (*OSSStorageProvider, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	bucket, err := client.Bucket(cfg.OSSBucket)
	if err != nil {
		return nil, err
	}
	return &OSSStorageProvider{Endpoint: cfg.OSSEndpoint, Bucket: bucket}, nil
}

func (p *OSSStorageProvider) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	if err := p.Bucket.PutObject(objectName, reader, oss.ContentType(contentType)); err != nil {
		return "", err
	}
	return p.GetURL(objectName), nil
}

func (p *OSSStorageProvider) UploadFile(ctx context.Context, objectName string, localPath string, contentType string) (string, error) {
	if err := p.Bucket.PutObjectFromFile(objectName, localPath, oss.ContentType(contentType)); err != nil {
		return "", err
	}
	return p.GetURL(objectName), nil
}

func (p *OSSStorageProvider) Delete(ctx context.Context, objectName string) error {
	return p.Bucket.DeleteObject(objectName)
}

func (p *OSSStorageProvider) GetURL(objectName string) string {
	return fmt.Sprintf("https://%s.%s/%s", p.Bucket.BucketName, p.Endpoint, objectName)
}

// NewStorageProvider 按配置选择存储后端，远端初始化失败时回退到本地
func NewStorageProvider(cfg *config.StorageConfig) StorageProvider {
	switch cfg.Type {
	case util.StorageMinio:
		p, err := NewMinioStorageProvider(cfg)
		if err == nil {
			return p
		}
		logger.Log.Error("Failed to init MinIO storage, falling back to local", zap.Error(err))
	case util.StorageOSS:
		p, err := NewOSSStorageProvider(cfg)
		if err == nil {
			return p
		}
		logger.Log.Error("Failed to init OSS storage, falling back to local", zap.Error(err))
	}
	return &LocalStorageProvider{Root: cfg.LocalPath}
}

// UploadedFile 上传结果；视频附带封面地址
type UploadedFile struct {
	URL          string `json:"url"`
	ContentType  string `json:"contentType"`
	Size         int64  `json:"size"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

type StorageService struct {
	Provider    StorageProvider
	MaxFileSize int64
	// Thumbnailer 生成视频封面，默认使用 ffmpeg
	Thumbnailer func(videoPath, thumbPath string) error
}

func NewStorageService(cfg *config.Config) *StorageService {
	return &StorageService{
		Provider:    NewStorageProvider(&cfg.Storage),
		MaxFileSize: cfg.Storage.MaxUploadMB << 20,
		Thumbnailer: func(videoPath, thumbPath string) error {
			return util.GenerateThumbnail(videoPath, thumbPath, "00:00:01")
		},
	}
}

// SaveFiles 校验并依次保存上传文件，任一文件失败即返回错误
func (s *StorageService) SaveFiles(ctx context.Context, folder string, files []*multipart.FileHeader) ([]UploadedFile, error) {
	if folder == "" {
		folder = util.FolderPosts
	}
	if !util.ValidFolder(folder) {
		return nil, util.InvalidArgumentError("Invalid upload folder")
	}
	if len(files) == 0 {
		return nil, util.InvalidArgumentError("No files provided")
	}

	results := make([]UploadedFile, 0, len(files))
	for _, fh := range files {
		uploaded, err := s.saveOne(ctx, folder, fh)
		if err != nil {
			return nil, err
		}
		results = append(results, *uploaded)
	}
	return results, nil
}

func (s *StorageService) saveOne(ctx context.Context, folder string, fh *multipart.FileHeader) (*UploadedFile, error) {
	if s.MaxFileSize > 0 && fh.Size > s.MaxFileSize {
		return nil, util.InvalidArgumentError(fmt.Sprintf("File %s exceeds the size limit", fh.Filename))
	}

	file, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	contentType, err := util.DetectMimeType(file, util.AllowedMimeTypes(folder))
	if err != nil {
		return nil, util.InvalidArgumentError(err.Error())
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	objectName := util.UploadObjectName(folder, fh.Filename, time.Now())
	url, err := s.Provider.Upload(ctx, objectName, file, fh.Size, contentType)
	if err != nil {
		return nil, fmt.Errorf("store %s: %w", objectName, err)
	}

	result := &UploadedFile{URL: url, ContentType: contentType, Size: fh.Size}
	if util.IsVideo(contentType) {
		result.ThumbnailURL = s.thumbnail(ctx, objectName, fh)
	}
	return result, nil
}

// thumbnail 生成失败只记录日志，不影响上传结果
func (s *StorageService) thumbnail(ctx context.Context, objectName string, fh *multipart.FileHeader) string {
	if s.Thumbnailer == nil {
		return ""
	}

	videoPath := ""
	if local, ok := s.Provider.(*LocalStorageProvider); ok {
		videoPath = local.path(objectName)
	} else {
		tmp, err := os.CreateTemp("", "upload-*"+filepath.Ext(fh.Filename))
		if err != nil {
			logger.Log.Warn("Failed to create temp file for thumbnail", zap.Error(err))
			return ""
		}
		defer os.Remove(tmp.Name())
		src, err := fh.Open()
		if err == nil {
			_, err = io.Copy(tmp, src)
			src.Close()
		}
		tmp.Close()
		if err != nil {
			logger.Log.Warn("Failed to buffer video for thumbnail", zap.Error(err))
			return ""
		}
		videoPath = tmp.Name()
	}

	thumbName := util.ThumbnailName(objectName)
	thumbPath := filepath.Join(os.TempDir(), "thumb-"+strings.ReplaceAll(thumbName, "/", "_"))
	if err := s.Thumbnailer(videoPath, thumbPath); err != nil {
		logger.Log.Warn("Failed to generate video thumbnail", zap.String("object", objectName), zap.Error(err))
		return ""
	}
	defer os.Remove(thumbPath)

	url, err := s.Provider.UploadFile(ctx, thumbName, thumbPath, "image/jpeg")
	if err != nil {
		logger.Log.Warn("Failed to store video thumbnail", zap.String("object", objectName), zap.Error(err))
		return ""
	}
	return url
}

func (s *StorageService) Delete(ctx context.Context, objectName string) error {
	return s.Provider.Delete(ctx, objectName)
}
