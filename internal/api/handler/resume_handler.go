package handler

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"resume-parser-go/internal/processor"
)

// DocumentParser 简历解析服务，processor.ResumeService 实现了该接口
type DocumentParser interface {
	ParseDocument(ctx context.Context, up processor.Upload) (*processor.ParseResponse, error)
}

// ParseForm 上传表单中除文件外的字段
type ParseForm struct {
	RequiredSkills string `form:"required_skills" validate:"max=2000"`
	RecruiterEmail string `form:"recruiter_email" validate:"omitempty,email"`
}

// ErrorResponse 失败响应
type ErrorResponse struct {
	Success bool   `json:"success"`
	Detail  string `json:"detail"`
}

// ResumeHandler 处理简历上传解析请求
type ResumeHandler struct {
	parser    DocumentParser
	validate  *validator.Validate
	maxUpload int64
	log       zerolog.Logger
}

// NewResumeHandler 创建处理器，maxUpload 为单个文件的字节上限
func NewResumeHandler(parser DocumentParser, maxUpload int64, log zerolog.Logger) *ResumeHandler {
	return &ResumeHandler{
		parser:    parser,
		validate:  validator.New(),
		maxUpload: maxUpload,
		log:       log,
	}
}

// Root 健康检查
func (h *ResumeHandler) Root(_ context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{
		"message": "Resume Parser API is running",
		"status":  "healthy",
	})
}

// Parse 处理 multipart 上传: file (必填)、required_skills、recruiter_email
func (h *ResumeHandler) Parse(ctx context.Context, c *app.RequestContext) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.fail(c, consts.StatusBadRequest, "No file uploaded")
		return
	}

	form := ParseForm{
		RequiredSkills: string(c.FormValue("required_skills")),
		RecruiterEmail: string(c.FormValue("recruiter_email")),
	}
	if err := h.validate.Struct(form); err != nil {
		h.fail(c, consts.StatusBadRequest, validationDetail(err))
		return
	}

	if fileHeader.Size > h.maxUpload {
		h.fail(c, consts.StatusRequestEntityTooLarge, fmt.Sprintf("File exceeds the %d byte limit", h.maxUpload))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.log.Error().Err(err).Str("filename", fileHeader.Filename).Msg("打开上传文件失败")
		h.fail(c, consts.StatusInternalServerError, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUpload+1))
	if err != nil {
		h.log.Error().Err(err).Str("filename", fileHeader.Filename).Msg("读取上传文件失败")
		h.fail(c, consts.StatusInternalServerError, "Failed to read uploaded file")
		return
	}

	resp, err := h.parser.ParseDocument(ctx, processor.Upload{
		Filename:       fileHeader.Filename,
		Data:           data,
		RequiredSkills: form.RequiredSkills,
		RecruiterEmail: form.RecruiterEmail,
	})
	if err != nil {
		status, detail := errorStatus(err)
		if status == consts.StatusInternalServerError {
			h.log.Error().Err(err).Str("filename", fileHeader.Filename).Msg("简历解析失败")
		}
		h.fail(c, status, detail)
		return
	}

	c.JSON(consts.StatusOK, resp)
}

func (h *ResumeHandler) fail(c *app.RequestContext, status int, detail string) {
	c.JSON(status, ErrorResponse{Success: false, Detail: detail})
}

// errorStatus 将服务错误映射为 HTTP 状态码和对外描述
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, processor.ErrUnsupportedDocument):
		return consts.StatusBadRequest, processor.ErrUnsupportedDocument.Error()
	case errors.Is(err, processor.ErrEmptyUpload):
		return consts.StatusBadRequest, "Uploaded file is empty"
	case errors.Is(err, processor.ErrDocumentTooLarge):
		return consts.StatusRequestEntityTooLarge, "Uploaded file is too large"
	default:
		return consts.StatusInternalServerError, "Error processing resume: " + err.Error()
	}
}

func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	switch fe := verrs[0]; fe.Field() {
	case "RecruiterEmail":
		return "recruiter_email must be a valid email address"
	case "RequiredSkills":
		return "required_skills is too long"
	default:
		return fmt.Sprintf("invalid field %s", fe.Field())
	}
}
