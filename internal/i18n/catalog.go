package i18n

// messages holds the flattened message catalogs. Keys mirror the web
// client's catalog so both front ends stay translatable in one pass.
var messages = map[string]map[string]string{
	"zh-CN": {
		"app.title":   "Ginkgo Talk - AI 手机键盘",
		"app.tagline": "AI 手机键盘",

		"status.connecting":         "连接中...",
		"status.connected":          "已连接",
		"status.disconnected":       "已断开",
		"status.connectFailed":      "连接失败",
		"status.connectTimeout":     "连接超时，请检查网络",
		"status.connectError":       "连接错误",
		"status.authExpired":        "授权已失效，请输入配对码",
		"status.pairNeedCode":       "请输入配对码完成连接",
		"status.pairUnavailable":    "配对服务不可用",
		"status.pairTimeout":        "配对服务连接超时",
		"status.pairRequestTimeout": "配对请求超时",

		"pair.title":                 "设备配对",
		"pair.inputPlaceholder":      "请输入 4 位配对码",
		"pair.confirm":               "确认配对",
		"pair.submitting":            "配对中...",
		"pair.hintNeedCode":          "请输入电脑终端显示的 4 位配对码",
		"pair.msgNeedCodeConnect":    "请输入 4 位配对码完成连接。",
		"pair.msgAuthExpiredNeedCode": "链接授权已失效，请输入 4 位配对码。",
		"pair.msgServiceUnavailable": "配对服务不可用，请重试。",
		"pair.msgNeedCode":           "请输入 4 位配对码。",
		"pair.msgServiceConnectFailed": "配对服务连接失败，请检查网络。",
		"pair.msgCodeInvalidFormat":  "配对码必须是 4 位数字。",
		"pair.msgCodeInvalid":        "配对码错误，请重试。",
		"pair.msgRequestFailed":      "配对请求失败，请重试。",
		"pair.msgPaired":             "配对成功。",

		"input.placeholder": "在这里输入文字，发送到电脑...",
		"send.send":         "发送",
		"send.sending":      "发送中...",

		"shortcut.title":   "电脑端快捷键",
		"shortcut.newLine": "换行",
		"shortcut.clear":   "清除",
		"shortcut.undo":    "撤销",
		"shortcut.paste":   "粘贴",

		"mode.title":     "AI 工具",
		"mode.tidy":      "整理",
		"mode.formal":    "正式",
		"mode.translate": "翻译",

		"ai.disabledHint": "AI 未启用，请先配置 API Key",
		"ai.done":         "已{mode}，可编辑后发送",
		"ai.failed":       "AI 处理失败",
		"ai.processing":   "AI 处理中...",
		"ai.timeout":      "处理超时，请重试",

		"history.title":      "发送记录",
		"history.clear":      "清空",
		"history.empty":      "还没有发送记录",
		"history.original":   "原文",
		"history.sent":       "已输入",
		"history.sending":    "发送中...",
		"history.processing": "AI 处理中...",
		"history.preview":    "已处理，待发送",
		"history.aiError":    "AI 错误",
		"history.error":      "错误",
		"history.modeRaw":    "原始",
		"history.modeTidy":   "整理",
		"history.modeFormal": "正式",
		"history.modeTranslate": "翻译",

		"settings.title":       "AI 设置",
		"settings.save":        "保存",
		"settings.saving":      "保存中...",
		"settings.needOneField": "请至少填写一项",
		"settings.saveOk":      "已保存",
		"settings.saveOkAiOn":  "已保存，AI 已启用",
		"settings.saveFailed":  "保存失败",
		"settings.networkError": "网络错误",
	},
	"en-US": {
		"app.title":   "Ginkgo Talk - AI Mobile Keyboard",
		"app.tagline": "AI Mobile Keyboard",

		"status.connecting":         "Connecting...",
		"status.connected":          "Connected",
		"status.disconnected":       "Disconnected",
		"status.connectFailed":      "Connection failed",
		"status.connectTimeout":     "Connection timeout, please check network",
		"status.connectError":       "Connection error",
		"status.authExpired":        "Authorization expired, please enter pair code",
		"status.pairNeedCode":       "Enter pair code to continue",
		"status.pairUnavailable":    "Pairing service unavailable",
		"status.pairTimeout":        "Pairing service timeout",
		"status.pairRequestTimeout": "Pair request timeout",

		"pair.title":                 "Device Pairing",
		"pair.inputPlaceholder":      "Enter 4-digit pair code",
		"pair.confirm":               "Confirm Pairing",
		"pair.submitting":            "Pairing...",
		"pair.hintNeedCode":          "Enter the 4-digit code shown on desktop terminal",
		"pair.msgNeedCodeConnect":    "Enter 4-digit pair code to continue.",
		"pair.msgAuthExpiredNeedCode": "Link authorization expired, enter 4-digit pair code.",
		"pair.msgServiceUnavailable": "Pairing service unavailable, please retry.",
		"pair.msgNeedCode":           "Please enter the 4-digit pair code.",
		"pair.msgServiceConnectFailed": "Pairing service connection failed, check your network.",
		"pair.msgCodeInvalidFormat":  "Pair code must be 4 digits.",
		"pair.msgCodeInvalid":        "Invalid pair code, please retry.",
		"pair.msgRequestFailed":      "Pair request failed, please retry.",
		"pair.msgPaired":             "Paired.",

		"input.placeholder": "Type here to send to your desktop...",
		"send.send":         "Send",
		"send.sending":      "Sending...",

		"shortcut.title":   "Desktop Shortcuts",
		"shortcut.newLine": "New line",
		"shortcut.clear":   "Clear",
		"shortcut.undo":    "Undo",
		"shortcut.paste":   "Paste",

		"mode.title":     "AI Tools",
		"mode.tidy":      "Tidy",
		"mode.formal":    "Formal",
		"mode.translate": "Translate",

		"ai.disabledHint": "AI not enabled, configure API Key first",
		"ai.done":         "{mode} done, edit then send",
		"ai.failed":       "AI processing failed",
		"ai.processing":   "AI processing...",
		"ai.timeout":      "Processing timeout, please retry",

		"history.title":      "Send History",
		"history.clear":      "Clear",
		"history.empty":      "No send history yet",
		"history.original":   "Original",
		"history.sent":       "Typed",
		"history.sending":    "Sending...",
		"history.processing": "AI processing...",
		"history.preview":    "Processed, pending send",
		"history.aiError":    "AI error",
		"history.error":      "Error",
		"history.modeRaw":    "Raw",
		"history.modeTidy":   "Tidy",
		"history.modeFormal": "Formal",
		"history.modeTranslate": "Translate",

		"settings.title":       "AI Settings",
		"settings.save":        "Save",
		"settings.saving":      "Saving...",
		"settings.needOneField": "Please fill at least one field",
		"settings.saveOk":      "Saved",
		"settings.saveOkAiOn":  "Saved, AI enabled",
		"settings.saveFailed":  "Save failed",
		"settings.networkError": "Network error",
	},
}
