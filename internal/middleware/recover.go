package middleware

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"go.uber.org/zap"

	"Lifeline/config"
	"Lifeline/pkg/errors"
	"Lifeline/pkg/logger"
	"Lifeline/pkg/response"
)

// RecoverConfig recover 中间件配置
type RecoverConfig struct {
	// 是否启用堆栈追踪
	EnableStackTrace bool
	// 生产环境是否返回详细错误
	ExposeDetailsInProduction bool
	// 是否是生产环境
	IsProduction bool
}

func NewRecoverConfig() RecoverConfig {
	return RecoverConfig{
		EnableStackTrace:          true,
		ExposeDetailsInProduction: false,
		IsProduction:              config.Cfg.IsProduction(),
	}
}

// RecoverMiddleware 创建 recover 中间件
func RecoverMiddleware() app.HandlerFunc {
	return RecoverMiddlewareWithConfig(NewRecoverConfig())
}

// RecoverMiddlewareWithConfig 带配置的 recover 中间件
func RecoverMiddlewareWithConfig(cfg RecoverConfig) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		defer func() {
			if err := recover(); err != nil {
				handlePanic(ctx, c, err, cfg)
			}
		}()

		c.Next(ctx)
	}
}

func handlePanic(ctx context.Context, c *app.RequestContext, err interface{}, cfg RecoverConfig) {
	var stack []byte
	if cfg.EnableStackTrace {
		stack = currentStack()
	}

	logger.Logger.Error("[PANIC RECOVERED]",
		zap.String("panic", fmt.Sprintf("%v", err)),
		zap.String("path", string(c.Path())),
		zap.String("method", string(c.Method())),
		zap.String("client_ip", c.ClientIP()),
		zap.ByteString("stack", stack),
	)

	errDef := errors.Definition{
		Code:    "INTERNAL_SERVER_ERROR",
		Message: "Internal server error",
	}

	if cfg.IsProduction && !cfg.ExposeDetailsInProduction {
		response.Error(ctx, c, errDef)
		return
	}

	errDef.Message = fmt.Sprintf("Internal error: %v", err)
	details := map[string]interface{}{
		"panic": fmt.Sprintf("%v", err),
	}
	if cfg.EnableStackTrace {
		details["stack"] = string(stack)
	}
	response.ErrorWithDetails(ctx, c, errDef, details)
}

// currentStack 当前 goroutine 的调用栈，跳过 runtime 和 recover 相关帧
func currentStack() []byte {
	var buf strings.Builder
	buf.WriteString("goroutine panic:\n")
	for i := 3; ; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}
		fmt.Fprintf(&buf, "  %s:%d\n    %s\n", file, line, fn.Name())
	}
	return []byte(buf.String())
}
