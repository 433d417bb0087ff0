package writer

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"gopkg.in/natefinch/lumberjack.v2"
)

// RotateMode 日志轮转模式
type RotateMode int

const (
	// RotateModeTime 按时间轮转
	RotateModeTime RotateMode = iota
	// RotateModeSize 按大小轮转
	RotateModeSize
)

func (m RotateMode) String() string {
	switch m {
	case RotateModeTime:
		return "time"
	case RotateModeSize:
		return "size"
	default:
		return "unknown"
	}
}

// UnmarshalText 支持在配置文件中写 "time" 或 "size"
func (m *RotateMode) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "time", "":
		*m = RotateModeTime
	case "size":
		*m = RotateModeSize
	default:
		return fmt.Errorf("unknown rotate mode %q", text)
	}
	return nil
}

// RotateConfig 日志轮转配置
type RotateConfig struct {
	Mode     RotateMode
	Filepath string
	Filename string
	FileExt  string

	MaxAgeHours       int // 按时间轮转：保留时间(小时)
	RotationTimeHours int // 按时间轮转：轮转间隔(小时)

	MaxSizeMB  int // 按大小轮转：单文件最大大小(MB)
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// File 创建文件输出 writer
func File(c RotateConfig) (io.Writer, error) {
	switch c.Mode {
	case RotateModeTime:
		w, err := rotatelogs.New(
			c.path("%Y%m%d%H%M"),
			rotatelogs.WithLinkName(c.path("")),
			rotatelogs.WithMaxAge(time.Duration(c.MaxAgeHours)*time.Hour),
			rotatelogs.WithRotationTime(time.Duration(c.RotationTimeHours)*time.Hour),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create time rotate writer: %w", err)
		}
		return w, nil
	case RotateModeSize:
		return &lumberjack.Logger{
			Filename:   c.path(""),
			MaxSize:    c.MaxSizeMB,
			MaxBackups: c.MaxBackups,
			MaxAge:     c.MaxAgeDays,
			Compress:   c.Compress,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported rotate mode: %v", c.Mode)
	}
}

// path 返回 <Filepath>/<Filename>[.<format>].<FileExt>
func (c RotateConfig) path(format string) string {
	var b strings.Builder
	b.WriteString(c.Filename)
	if format != "" {
		b.WriteByte('.')
		b.WriteString(format)
	}
	b.WriteByte('.')
	b.WriteString(c.FileExt)
	return filepath.Join(c.Filepath, b.String())
}
