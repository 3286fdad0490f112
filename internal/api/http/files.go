package http

import (
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/remotefs/internal/files"
	"github.com/GriffinCanCode/remotefs/internal/shared/id"
)

// Download streams a file. Range and conditional requests are handled by
// http.ServeContent; HEAD is routed here too.
func (h *Handlers) Download(c *gin.Context) {
	done := h.metrics.Track("dl")
	ctx := c.Request.Context()

	p, err := h.files.Sanitize(rawTail(c))
	if err != nil {
		done(err)
		h.fail(c, "dl", err)
		return
	}
	file, err := h.files.MustBeExistingFile(ctx, p)
	if err != nil {
		done(err)
		h.fail(c, "dl", err)
		return
	}
	f, info, err := h.files.Open(ctx, file)
	if err != nil {
		done(err)
		h.fail(c, "dl", err)
		return
	}
	defer f.Close()

	if mtype, err := mimetype.DetectReader(f); err == nil {
		c.Header("Content-Type", mtype.String())
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		done(err)
		h.fail(c, "dl", err)
		return
	}

	done(nil)
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
}

// List returns the immediate children of a directory.
func (h *Handlers) List(c *gin.Context) {
	done := h.metrics.Track("ls")
	ctx := c.Request.Context()

	p, err := h.files.Sanitize(rawTail(c))
	if err != nil {
		done(err)
		h.fail(c, "ls", err)
		return
	}
	dir, err := h.files.MustBeExistingDirectory(ctx, p)
	if err != nil {
		done(err)
		h.fail(c, "ls", err)
		return
	}
	entries, err := h.files.List(ctx, dir)
	done(err)
	if err != nil {
		h.fail(c, "ls", err)
		return
	}

	h.metrics.Listing(len(entries))
	h.writeEntries(c, entries)
}

// Find searches below a directory for entries matching ?pattern=.
func (h *Handlers) Find(c *gin.Context) {
	done := h.metrics.Track("find")
	ctx := c.Request.Context()

	p, err := h.files.Sanitize(rawTail(c))
	if err != nil {
		done(err)
		h.fail(c, "find", err)
		return
	}
	dir, err := h.files.MustBeExistingDirectory(ctx, p)
	if err != nil {
		done(err)
		h.fail(c, "find", err)
		return
	}
	entries, err := h.files.Find(ctx, dir, c.Query("pattern"))
	done(err)
	if err != nil {
		h.fail(c, "find", err)
		return
	}

	h.writeEntries(c, entries)
}

// Mkdir creates one directory. The path must not exist yet.
func (h *Handlers) Mkdir(c *gin.Context) {
	done := h.metrics.Track("mkdir")
	ctx := c.Request.Context()

	p, err := h.files.Sanitize(rawTail(c))
	if err != nil {
		done(err)
		h.fail(c, "mkdir", err)
		return
	}
	absent, err := h.files.MustNotExist(ctx, p)
	if err != nil {
		done(err)
		h.fail(c, "mkdir", err)
		return
	}
	err = h.files.Mkdir(ctx, absent)
	done(err)
	if err != nil {
		h.fail(c, "mkdir", err)
		return
	}
	c.Status(http.StatusOK)
}

// RemoveDir removes a directory recursively.
func (h *Handlers) RemoveDir(c *gin.Context) {
	done := h.metrics.Track("rmdir")
	ctx := c.Request.Context()

	p, err := h.files.Sanitize(rawTail(c))
	if err != nil {
		done(err)
		h.fail(c, "rmdir", err)
		return
	}
	dir, err := h.files.MustBeExistingDirectory(ctx, p)
	if err != nil {
		done(err)
		h.fail(c, "rmdir", err)
		return
	}
	err = h.files.RemoveDir(ctx, dir)
	done(err)
	if err != nil {
		h.fail(c, "rmdir", err)
		return
	}
	c.Status(http.StatusOK)
}

// RemoveFile removes a single file.
func (h *Handlers) RemoveFile(c *gin.Context) {
	done := h.metrics.Track("rm")
	ctx := c.Request.Context()

	p, err := h.files.Sanitize(rawTail(c))
	if err != nil {
		done(err)
		h.fail(c, "rm", err)
		return
	}
	file, err := h.files.MustBeExistingFile(ctx, p)
	if err != nil {
		done(err)
		h.fail(c, "rm", err)
		return
	}
	err = h.files.RemoveFile(ctx, file)
	done(err)
	if err != nil {
		h.fail(c, "rm", err)
		return
	}
	c.Status(http.StatusOK)
}

// Move renames the path to ?to=. The query value is decoded by the query
// parser and re-escaped so the sanitizer still decodes it exactly once.
func (h *Handlers) Move(c *gin.Context) {
	done := h.metrics.Track("mv")
	ctx := c.Request.Context()

	p, err := h.files.Sanitize(rawTail(c))
	if err != nil {
		done(err)
		h.fail(c, "mv", err)
		return
	}
	src, err := h.files.MustExist(ctx, p)
	if err != nil {
		done(err)
		h.fail(c, "mv", err)
		return
	}
	to, ok := c.GetQuery("to")
	if !ok {
		err = files.ErrNotFound
		done(err)
		h.fail(c, "mv", err)
		return
	}
	err = h.files.Move(ctx, src, escape(to))
	done(err)
	if err != nil {
		h.fail(c, "mv", err)
		return
	}
	c.Status(http.StatusOK)
}

// Upload streams every multipart part into the directory. The body limit
// middleware has already rejected undeclared or oversized bodies.
func (h *Handlers) Upload(c *gin.Context) {
	done := h.metrics.Track("up")
	ctx := c.Request.Context()
	uploadID := id.NewUploadID()

	p, err := h.files.Sanitize(rawTail(c))
	if err != nil {
		done(err)
		h.fail(c, "up", err)
		return
	}
	dir, err := h.files.MustBeExistingDirectory(ctx, p)
	if err != nil {
		done(err)
		h.fail(c, "up", err)
		return
	}

	result, err := h.files.StreamUpload(ctx, dir, c.GetHeader("Content-Type"), c.Request.Body)
	h.metrics.Upload(len(result.Files), result.Bytes())
	done(err)
	h.logger.Info("upload",
		zap.String("upload_id", uploadID.String()),
		zap.String("dir", dir.String()),
		zap.Int("files", len(result.Files)),
		zap.Int64("bytes", result.Bytes()),
		zap.Bool("complete", err == nil))
	if err != nil {
		h.fail(c, "up", err)
		return
	}
	c.Status(http.StatusOK)
}
