package controller

import (
	"zorides_backend/internal/service"
	"zorides_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UploadController struct {
	StorageService *service.StorageService
}

func NewUploadController(storageService *service.StorageService) *UploadController {
	return &UploadController{StorageService: storageService}
}

// Upload godoc
// @Summary 上传文件
// @Description 上传图片（活动目录可上传视频），返回可访问地址
// @Tags 上传
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param files formData file true "文件，可多个"
// @Param folder formData string false "avatars|posts|events，默认 posts"
// @Success 200 {object} util.Response{data=[]service.UploadedFile}
// @Failure 400 {object} util.Response
// @Router /api/upload [post]
func (c *UploadController) Upload(ctx *gin.Context) {
	form, err := ctx.MultipartForm()
	if err != nil {
		util.BadRequest(ctx, "No files provided")
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		files = form.File["files[]"]
	}

	uploaded, err := c.StorageService.SaveFiles(ctx.Request.Context(), ctx.PostForm("folder"), files)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	urls := make([]string, len(uploaded))
	for i, f := range uploaded {
		urls[i] = f.URL
	}
	util.Success(ctx, gin.H{"urls": urls, "files": uploaded})
}
