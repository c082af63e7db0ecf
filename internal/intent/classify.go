// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package intent classifies a raw query into one of the closed set of
// query intents by scanning for signal phrases. Chinese and English
// variants are both recognized.
package intent

import (
	"strings"

	"github.com/pdiddy/metasearch/pkg/types"
)

// signals maps each intent to the phrases that indicate it. Matching is
// case-insensitive substring matching over the whole query; the first
// intent (in types.Intents priority order) with a matching phrase wins.
var signals = map[types.Intent][]string{
	types.IntentResource: {
		"download", "documentation", "official docs", "official site",
		"cheat sheet", "cheatsheet", "awesome list", "repo",
		"资源", "下载", "文档", "官网", "官方",
	},
	types.IntentNews: {
		"news", "announcement", "announced", "released", "release notes",
		"launches", "headline",
		"新闻", "发布", "资讯", "头条",
	},
	types.IntentStatus: {
		"latest", "current", "currently", "right now", "today", "status",
		"is it down", "this week", "this month", "this year",
		"最新", "现在", "当前", "目前", "实时", "本周", "本月", "今年",
	},
	types.IntentComparison: {
		" vs ", " vs. ", "versus", "difference between", "compared to",
		"compare ", "or should i",
		"对比", "区别", "哪个好", "还是",
	},
	types.IntentTutorial: {
		"how to", "tutorial", "guide", "step by step", "getting started",
		"walkthrough", "example of",
		"教程", "怎么", "如何", "入门", "实例",
	},
	types.IntentAcademic: {
		"paper", "papers", "research", "study", "survey of", "citation",
		"arxiv", "doi", "peer-reviewed", "literature",
		"论文", "研究", "文献", "综述",
	},
	types.IntentFactual: {
		"what is", "what are", "who is", "who was", "when did", "when was",
		"where is", "why does", "definition of", "meaning of",
		"是什么", "什么是", "谁是", "为什么", "多少",
	},
	// Exploratory is the fallback: it carries no signal phrases.
	types.IntentExploratory: nil,
}

// Classify returns the intent for a query. An explicit intent always wins.
// Otherwise the query is scanned against each intent's signal phrases in
// fixed priority order, and the first match is returned. A query with no
// matching signal is exploratory. The function is pure: the same query
// always yields the same intent.
func Classify(query string, explicit *types.Intent) types.Intent {
	if explicit != nil {
		return *explicit
	}

	lowered := strings.ToLower(query)
	for _, it := range types.Intents {
		for _, phrase := range signals[it] {
			if strings.Contains(lowered, phrase) {
				return it
			}
		}
	}
	return types.IntentExploratory
}
