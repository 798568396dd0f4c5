package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/smallbiznis/prepquiz/internal/config"
	"github.com/smallbiznis/prepquiz/internal/pdf"
	"github.com/smallbiznis/prepquiz/internal/service"
)

// multipartOverhead leaves room for boundaries and part headers on top of
// the file itself.
const multipartOverhead = 64 << 10

const (
	msgNoFile         = "No file uploaded or file is empty."
	msgNotPDF         = "Uploaded file is not a PDF."
	msgTooLarge       = "Uploaded file is too large."
	msgNoText         = "PDF contains no readable text."
	msgInvalidFormat  = "Invalid response format from AI model."
	msgGenerateFailed = "Failed to generate questions due to an internal server error."
)

// QuestionHandler turns uploaded PDFs into question sets.
type QuestionHandler struct {
	Questions *service.QuestionService
	Extractor pdf.Extractor
	maxBytes  int64
	logger    *zap.Logger
}

func NewQuestionHandler(questions *service.QuestionService, extractor pdf.Extractor, cfg config.Config, logger *zap.Logger) *QuestionHandler {
	return &QuestionHandler{Questions: questions, Extractor: extractor, maxBytes: cfg.UploadMaxBytes, logger: logger}
}

// GenerateQuestions reads the multipart field "file", extracts its text and
// returns the generated questions.
func (h *QuestionHandler) GenerateQuestions(c *gin.Context) {
	limit := h.maxBytes + multipartOverhead
	if c.Request.ContentLength > limit {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": msgTooLarge})
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": msgTooLarge})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": msgNoFile})
		return
	}
	if header.Size == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgNoFile})
		return
	}
	if header.Size > h.maxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": msgTooLarge})
		return
	}

	file, err := header.Open()
	if err != nil {
		h.logger.Error("open upload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgGenerateFailed})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("read upload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgGenerateFailed})
		return
	}

	ctx := c.Request.Context()
	text, err := h.Extractor.ExtractText(ctx, data)
	switch {
	case errors.Is(err, pdf.ErrEmptyFile):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgNoFile})
		return
	case errors.Is(err, pdf.ErrNotPDF):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgNotPDF})
		return
	case errors.Is(err, pdf.ErrUnreadable):
		h.logger.Warn("unreadable pdf", zap.String("filename", header.Filename), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": msgNoText})
		return
	case err != nil:
		h.logger.Error("extract pdf text", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgGenerateFailed})
		return
	}

	questions, err := h.Questions.Generate(ctx, text)
	switch {
	case errors.Is(err, service.ErrEmptyDocument):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgNoText})
		return
	case errors.Is(err, service.ErrMalformedOutput):
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInvalidFormat})
		return
	case err != nil:
		h.logger.Error("generate questions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgGenerateFailed})
		return
	}

	c.JSON(http.StatusOK, gin.H{"questions": questions})
}
