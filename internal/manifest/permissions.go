package manifest

// Permissions is the list of official Chrome extension permissions.
var Permissions = []string{
	"activeTab",
	"alarms",
	"background",
	"bookmarks",
	"browsingData",
	"certificateProvider",
	"clipboardRead",
	"clipboardWrite",
	"contentSettings",
	"contextMenus",
	"cookies",
	"debugger",
	"declarativeContent",
	"declarativeNetRequest",
	"declarativeNetRequestFeedback",
	"declarativeNetRequestWithHostAccess",
	"declarativeWebRequest",
	"desktopCapture",
	"documentScan",
	"downloads",
	"downloads.open",
	"downloads.ui",
	"enterprise.deviceAttributes",
	"enterprise.hardwarePlatform",
	"enterprise.networkingAttributes",
	"enterprise.platformKeys",
	"experimental",
	"fileBrowserHandler",
	"fileSystemProvider",
	"fontSettings",
	"gcm",
	"geolocation",
	"history",
	"identity",
	"identity.email",
	"idle",
	"loginState",
	"management",
	"nativeMessaging",
	"notifications",
	"offscreen",
	"pageCapture",
	"platformKeys",
	"power",
	"printerProvider",
	"printing",
	"printingMetrics",
	"privacy",
	"processes",
	"proxy",
	"scripting",
	"search",
	"sessions",
	"sidePanel",
	"storage",
	"system.cpu",
	"system.display",
	"system.memory",
	"system.storage",
	"tabCapture",
	"tabGroups",
	"tabs",
	"topSites",
	"tts",
	"ttsEngine",
	"unlimitedStorage",
	"vpnProvider",
	"wallpaper",
	"webAuthenticationProxy",
	"webNavigation",
	"webRequest",
	"webRequestBlocking",
}

var knownPermissions = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Permissions))
	for _, p := range Permissions {
		m[p] = struct{}{}
	}
	return m
}()
