package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	MimeVideo = "video/"
	MimeImage = "image/"
)

// 上传目录
const (
	FolderAvatars = "avatars"
	FolderPosts   = "posts"
	FolderEvents  = "events"
)

func ValidFolder(folder string) bool {
	return folder == FolderAvatars || folder == FolderPosts || folder == FolderEvents
}

// AllowedMimeTypes 各上传目录允许的文件类型，活动可上传视频
func AllowedMimeTypes(folder string) []string {
	if folder == FolderEvents {
		return []string{MimeImage, MimeVideo}
	}
	return []string{MimeImage}
}

// 列表默认条数
const (
	DefaultFeedLimit  = 20
	PostListLimit     = 50
	AdminPostLimit    = 100
	MaxMessagesPerReq = 500
)
