// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package session

import (
	"errors"

	"github.com/tomtom215/cadence/internal/client"
	"github.com/tomtom215/cadence/internal/validation"
)

var (
	// ErrBusy is returned when the same operation is already in flight.
	ErrBusy = errors.New("operation already in progress")

	// ErrClosed is returned by every operation after Close, and for
	// completions that arrive after Close.
	ErrClosed = errors.New("session closed")
)

// Operation names a session operation. Each has its own loading flag.
type Operation string

const (
	OpAnalyze          Operation = "analyze"
	OpAnalyzeSentiment Operation = "analyze_sentiment"
	OpAnalyzeTheme     Operation = "analyze_theme"
	OpAnalyzeRhythm    Operation = "analyze_rhythm"
	OpGenerate         Operation = "generate"
	OpConvertStyle     Operation = "convert_style"
	OpContinue         Operation = "continue"
	OpOptimizeRhyme    Operation = "optimize_rhyme"
	OpRecommend        Operation = "recommend"
	OpKnowledgeGraph   Operation = "knowledge_graph"
	OpPreferences      Operation = "preferences"
	OpRefresh          Operation = "refresh_history"
	OpDetail           Operation = "history_detail"
	OpDelete           Operation = "delete_history"
)

// Notice levels.
const (
	LevelSuccess = "success"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Notice is a transient user-facing message.
type Notice struct {
	Level     string    `json:"level"`
	Operation Operation `json:"operation"`
	Message   string    `json:"message"`
}

// String renders the notice for display, prefixing failures with the
// operation label.
func (n Notice) String() string {
	label, ok := opLabels[n.Operation]
	if n.Level != LevelError || !ok {
		return n.Message
	}
	if n.Message == genericMessage(n.Operation) {
		return label + "失败"
	}
	return label + "失败：" + n.Message
}

var opLabels = map[Operation]string{
	OpAnalyze:          "分析",
	OpAnalyzeSentiment: "情感分析",
	OpAnalyzeTheme:     "主题分析",
	OpAnalyzeRhythm:    "韵律分析",
	OpGenerate:         "生成",
	OpConvertStyle:     "转换",
	OpContinue:         "修改",
	OpOptimizeRhyme:    "押韵优化",
	OpRecommend:        "推荐",
	OpKnowledgeGraph:   "知识图谱",
	OpPreferences:      "偏好设置",
	OpRefresh:          "加载历史",
	OpDetail:           "加载详情",
	OpDelete:           "删除",
}

var successMessages = map[Operation]string{
	OpAnalyze:          "分析完成！",
	OpAnalyzeSentiment: "分析完成！",
	OpAnalyzeTheme:     "分析完成！",
	OpAnalyzeRhythm:    "分析完成！",
	OpGenerate:         "生成成功！",
	OpConvertStyle:     "转换成功！",
	OpContinue:         "修改完成！",
	OpOptimizeRhyme:    "优化完成！",
	OpRecommend:        "推荐完成！",
	OpDelete:           "删除成功",
}

// fieldPrompts are shown instead of the generic validation message when a
// required text field is blank.
var fieldPrompts = map[string]string{
	"Lyrics":         "请输入歌词",
	"PreviousLyrics": "请输入歌词和反馈",
	"Feedback":       "请输入歌词和反馈",
	"Line":           "请输入歌词行和目标韵脚",
	"TargetRhyme":    "请输入歌词行和目标韵脚",
	"Songs":          "请至少提供一首歌曲",
}

func genericMessage(op Operation) string {
	return string(op) + " failed"
}

// failureNotice builds the error notice for err.
func failureNotice(op Operation, err error) Notice {
	msg, ok := client.UserMessage(err)
	if !ok {
		msg = genericMessage(op)
	}
	return Notice{Level: LevelError, Operation: op, Message: msg}
}

// validationNotice builds the warning notice for a rejected input.
func validationNotice(op Operation, verr *validation.RequestValidationError) Notice {
	for _, fe := range verr.Errors() {
		if prompt, ok := fieldPrompts[fe.Field()]; ok {
			return Notice{Level: LevelWarning, Operation: op, Message: prompt}
		}
	}
	return Notice{Level: LevelWarning, Operation: op, Message: verr.Error()}
}
