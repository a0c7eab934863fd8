package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-rbac/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-rbac/internal/metrics"
)

// DebugModule exposes Prometheus metrics to private networks only.
type DebugModule struct {
	Recorder *metrics.Recorder
}

func NewDebugModule(rec *metrics.Recorder) *DebugModule { return &DebugModule{Recorder: rec} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	if m.Recorder == nil {
		return
	}
	rg.GET("/metrics", middleware.OnlyPrivateIP(), gin.WrapH(m.Recorder.Handler()))
}
