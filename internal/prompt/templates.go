package prompt

import "github.com/davetashner/gloss/internal/langdetect"

// ResponseLanguage is the language every answer is requested in, whatever
// the language of the source text.
const ResponseLanguage = "简体中文"

// template holds the per-language wording.
type template struct {
	system string
	// subject names the source language as it appears in the panel prompt.
	subject string
	// expert overrides subject in the panel prompt's role line.
	expert string
	// note is the language-specific hint appended to the panel prompt.
	note  string
	title string
}

var templates = map[langdetect.Tag]template{
	langdetect.TagChinese: {
		system:  "你是一个专业的中文内容解读助手，擅长用简单直白的语言帮助没有背景知识的用户快速理解学术论文、技术文档、新闻报道等复杂中文内容。",
		subject: "中文内容",
		note:    "请确保回复使用简体中文。",
		title:   "🇨🇳 中文解读",
	},
	langdetect.TagEnglish: {
		system:  "你是一个专业的英文内容解读助手，擅长分析英文内容，用简单中文为中国用户解释，特别注重专业术语的准确翻译和文化背景说明，帮助用户快速理解。",
		subject: "英文内容",
		note:    "请特别注意英文术语的准确翻译和文化背景说明，回复用简体中文。",
		title:   "🇺🇸 英文解读",
	},
	langdetect.TagJapanese: {
		system:  "你是一个专业的日文内容解读助手，擅长用浅显中文解释日文内容的文化背景和深层含义，特别注意日语敬语体系和文化内涵的说明。",
		subject: "日文内容",
		note:    "请注意日语特有的敬语、文化内涵等，回复用简体中文。",
		title:   "🇯🇵 日文解读",
	},
	langdetect.TagKorean: {
		system:  "你是一个专业的韩文内容解读助手，擅长将复杂的韩文内容转化为简单中文，重点说明韩语敬语系统和韩国文化特色。",
		subject: "韩文内容",
		note:    "请注意韩语的敬语系统和文化特色，回复用简体中文。",
		title:   "🇰🇷 韩文解读",
	},
	langdetect.TagRussian: {
		system:  "你是一个专业的俄文内容解读助手，擅长用简单中文解析俄文内容，特别注意俄语语法特点和文化背景的说明。",
		subject: "俄文内容",
		note:    "请注意俄语的语法特点和文化背景，回复用简体中文。",
		title:   "🇷🇺 俄文解读",
	},
	langdetect.TagGerman: {
		system:  "你是一个专业的德文内容解读助手，擅长解释德文内容中的复合词和专业概念，用简单中文帮助用户理解德国文化背景。",
		subject: "德文内容",
		note:    "请注意德语的复合词特点和文化背景，回复用简体中文。",
		title:   "🇩🇪 德文解读",
	},
	langdetect.TagFrench: {
		system:  "你是一个专业的法文内容解读助手，擅长用法语文化视角解读内容，用简单中文说明语法特点和文化背景。",
		subject: "法文内容",
		note:    "请注意法语的语法特点和文化背景，回复用简体中文。",
		title:   "🇫🇷 法文解读",
	},
	langdetect.TagSpanish: {
		system:  "你是一个专业的西班牙文内容解读助手，擅长解析西班牙语文化语境，用简单中文帮助理解拉美和西班牙文化差异。",
		subject: "西班牙文内容",
		note:    "请注意西班牙语的语法特点和文化背景，回复用简体中文。",
		title:   "🇪🇸 西班牙文解读",
	},
	langdetect.TagArabic: {
		system:  "你是一个专业的阿拉伯文内容解读助手，擅长处理从右向左书写的内容，用简单中文解释阿拉伯文化背景和语言特点。",
		subject: "阿拉伯文内容",
		note:    "请注意阿拉伯语从右到左的书写方式和文化背景，回复用简体中文。",
		title:   "🇸🇦 阿拉伯文解读",
	},
	langdetect.TagHindi: {
		system:  "你是一个专业的印地文内容解读助手，擅长解释印度文化背景下的内容，用简单中文说明印地语语法和文化特色。",
		subject: "印地文内容",
		note:    "请注意印地语的语法特点和印度文化背景，回复用简体中文。",
		title:   "🇮🇳 印地文解读",
	},
	langdetect.TagThai: {
		system:  "你是一个专业的泰文内容解读助手，擅长解析泰国文化语境，用简单中文说明泰语语法特点和文化背景。",
		subject: "泰文内容",
		note:    "请注意泰语的语法特点和泰国文化背景，回复用简体中文。",
		title:   "🇹🇭 泰文解读",
	},
	langdetect.TagAuto: {
		system:  "你是一个专业的多语言内容解读助手，能够解析各类复杂内容（学术、技术、新闻等），用简单中文帮助用户快速理解核心信息。",
		subject: "内容",
		expert:  "多语言内容",
		note:    "请根据原文的语言特点进行深入分析，回复用简体中文。",
		title:   "🌐 智能解读",
	},
}

// userTemplate is the default user message. %s is replaced by the source
// text.
const userTemplate = `你是一个专业的AI内容解读助手，擅长用简单直白的语言，帮助没有背景知识的用户快速理解各种复杂内容（例如学术论文、技术说明、新闻报道、产品介绍、百科内容等）。

请仔细阅读以下文本，全面理解后再开始解释。

请根据以下文本，用通俗易懂的方式解释，并按照以下格式回复：

1. **一句话总结**
用一句话概括它大致在讲什么，让用户先有方向感。

2. **简单解释（2-3段）**
用非常清晰的语言分段讲解主要内容，避免复杂术语，如需用术语请用括号简单说明。

3. **为什么重要/有用（可选）**
简单告诉用户这个内容在实际中有什么意义，或者可以用来做什么。

需要解读的内容：
"%s"

请用` + ResponseLanguage + `回复。`

// panelTemplate is the compact prompt a presentation layer sends as a custom
// prompt. Verbs: expert, subject, text, note.
const panelTemplate = "你是专业的%s解读助手，请用中文分析以下%s：\n\n\"%s\"\n\n请按以下格式回答：\n1. 核心内容总结（1-2句话）\n2. 详细解释（2-3段）\n3. 相关背景或扩展信息（可选）\n\n%s"

func templateFor(tag langdetect.Tag) template {
	if t, ok := templates[tag]; ok {
		return t
	}
	return templates[langdetect.TagAuto]
}
