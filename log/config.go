package log

import (
	"github.com/kochabx/fetchapi/log/writer"
)

const (
	OutputConsole = "console"
	OutputFile    = "file"
	OutputMulti   = "multi"
)

// Config 日志配置
type Config struct {
	Level  string     `json:"level" mapstructure:"level" default:"info" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Output string     `json:"output" mapstructure:"output" default:"console" validate:"oneof=console file multi"`
	File   FileConfig `json:"file" mapstructure:"file"`
}

// FileConfig 日志文件配置
type FileConfig struct {
	Filepath         string            `json:"filepath" mapstructure:"filepath" default:"log"`
	Filename         string            `json:"filename" mapstructure:"filename" default:"fetchapi"`
	FileExt          string            `json:"file_ext" mapstructure:"file_ext" default:"log"`
	RotateMode       writer.RotateMode `json:"rotate_mode" mapstructure:"rotate_mode" default:"time"`
	RotatelogsConfig RotatelogsConfig  `json:"rotatelogs_config" mapstructure:"rotatelogs_config"`
	LumberjackConfig LumberjackConfig  `json:"lumberjack_config" mapstructure:"lumberjack_config"`
}

// RotatelogsConfig 按时间轮转配置
type RotatelogsConfig struct {
	MaxAge       int `json:"max_age" mapstructure:"max_age" default:"24"`
	RotationTime int `json:"rotation_time" mapstructure:"rotation_time" default:"1"`
}

// LumberjackConfig 按大小轮转配置
type LumberjackConfig struct {
	MaxSize    int  `json:"max_size" mapstructure:"max_size" default:"100"`
	MaxBackups int  `json:"max_backups" mapstructure:"max_backups" default:"5"`
	MaxAge     int  `json:"max_age" mapstructure:"max_age" default:"30"`
	Compress   bool `json:"compress" mapstructure:"compress"`
}

func (c *FileConfig) toWriterConfig() writer.RotateConfig {
	return writer.RotateConfig{
		Mode:              c.RotateMode,
		Filepath:          c.Filepath,
		Filename:          c.Filename,
		FileExt:           c.FileExt,
		MaxAgeHours:       c.RotatelogsConfig.MaxAge,
		RotationTimeHours: c.RotatelogsConfig.RotationTime,
		MaxSizeMB:         c.LumberjackConfig.MaxSize,
		MaxBackups:        c.LumberjackConfig.MaxBackups,
		MaxAgeDays:        c.LumberjackConfig.MaxAge,
		Compress:          c.LumberjackConfig.Compress,
	}
}
