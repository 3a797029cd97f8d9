package domain

// Level is a named severity or quality bucket attached to a measurement.
type Level struct {
	Code        string `json:"code"`
	Label       string `json:"label,omitempty"`
	Color       string `json:"color"`
	Description string `json:"description,omitempty"`
}

// Category describes a non-ordinal classification such as a station type,
// a station status, or a waste category.
type Category struct {
	Code        string `json:"code"`
	Label       string `json:"label"`
	Color       string `json:"color"`
	Icon        string `json:"icon,omitempty"`
	Badge       string `json:"badge,omitempty"`
	Description string `json:"description,omitempty"`
}

// UnknownLevel is returned for unknown metric names and missing values.
var UnknownLevel = Level{Code: "unknown", Label: "未知", Color: "#d9d9d9"}

// AQI bands. Upper bounds are inclusive.
var (
	AQIGood = Level{
		Code: "good", Label: "良好", Color: "#52c41a",
		Description: "空氣品質令人滿意，基本無空氣污染",
	}
	AQIModerate = Level{
		Code: "moderate", Label: "普通", Color: "#faad14",
		Description: "空氣品質可接受，但某些污染物可能對極少數異常敏感人群健康有較弱影響",
	}
	AQIUnhealthySensitive = Level{
		Code: "unhealthy_sensitive", Label: "對敏感族群不健康", Color: "#fa8c16",
		Description: "易感人群症狀進一步加劇，可能對健康人群的心臟、呼吸系統有影響",
	}
	AQIUnhealthy = Level{
		Code: "unhealthy", Label: "對所有族群不健康", Color: "#f5222d",
		Description: "健康人群運動耐受性降低，有明顯強烈症狀，提前出現某些疾病",
	}
	AQIVeryUnhealthy = Level{
		Code: "very_unhealthy", Label: "非常不健康", Color: "#722ed1",
		Description: "健康人群運動限制，有疾病症狀",
	}
	AQIHazardous = Level{
		Code: "hazardous", Label: "危險", Color: "#8c0326",
		Description: "所有人健康都會受到嚴重危害",
	}
)

// River Pollution Index bands.
var (
	RPIUnpolluted = Level{
		Code: "unpolluted", Label: "未(稍)受污染", Color: "#52c41a",
		Description: "水質狀況極佳，適合各種用途",
	}
	RPILightlyPolluted = Level{
		Code: "lightly_polluted", Label: "輕度污染", Color: "#faad14",
		Description: "水質良好，稍有污染現象",
	}
	RPIModeratelyPolluted = Level{
		Code: "moderately_polluted", Label: "中度污染", Color: "#fa8c16",
		Description: "水質狀況尚可，但需注意污染情況",
	}
	RPISeverelyPolluted = Level{
		Code: "severely_polluted", Label: "嚴重污染", Color: "#f5222d",
		Description: "水質受到嚴重污染，不適合接觸",
	}
)

// Water Quality Index bands (higher is better).
var (
	WQIExcellent = Level{Code: "excellent", Label: "優良", Color: "#0066cc", Description: "水質優良，適合各種用途"}
	WQIGood      = Level{Code: "good", Label: "良好", Color: "#00cc66", Description: "水質良好，符合使用標準"}
	WQIModerate  = Level{Code: "moderate", Label: "普通", Color: "#ffcc00", Description: "水質尚可，需持續監測"}
	WQIPoor      = Level{Code: "poor", Label: "不良", Color: "#cc0000", Description: "水質不佳，需要改善"}
)

// Recycling-rate bands.
var (
	RecyclingExcellent = Level{Code: "excellent", Label: "優秀", Color: "#52c41a", Description: "回收表現優異"}
	RecyclingGood      = Level{Code: "good", Label: "良好", Color: "#a0d911", Description: "回收表現良好"}
	RecyclingAverage   = Level{Code: "average", Label: "一般", Color: "#faad14", Description: "回收表現一般"}
	RecyclingPoor      = Level{Code: "poor", Label: "待改善", Color: "#f5222d", Description: "回收表現有待改善"}
)

// Per-pollutant and per-parameter status levels.
var (
	pollutantGood      = Level{Code: "good", Label: "良好", Color: "#52c41a"}
	pollutantModerate  = Level{Code: "moderate", Label: "普通", Color: "#faad14"}
	pollutantUnhealthy = Level{Code: "unhealthy", Label: "不健康", Color: "#f5222d"}
	pollutantDangerous = Level{Code: "dangerous", Label: "危險", Color: "#722ed1"}

	parameterGood     = Level{Code: "good", Label: "良", Color: "#52c41a"}
	parameterModerate = Level{Code: "moderate", Label: "普通", Color: "#faad14"}
	parameterPoor     = Level{Code: "poor", Label: "差", Color: "#fa8c16"}
	parameterVeryPoor = Level{Code: "very_poor", Label: "極差", Color: "#f5222d"}

	phExcellent = Level{Code: "excellent", Label: "優", Color: "#52c41a"}
	phGood      = Level{Code: "good", Label: "良", Color: "#faad14"}
	phPoor      = Level{Code: "poor", Label: "差", Color: "#f5222d"}
)

var stationTypes = map[string]Category{
	"air":       {Code: "air", Label: "空氣品質監測站", Color: "#1890ff", Icon: "cloud", Description: "監測空氣品質相關參數"},
	"water":     {Code: "water", Label: "水質監測站", Color: "#52c41a", Icon: "dropbox", Description: "監測河川、湖泊水質參數"},
	"noise":     {Code: "noise", Label: "噪音監測站", Color: "#fa8c16", Icon: "sound", Description: "監測環境噪音狀況"},
	"weather":   {Code: "weather", Label: "氣象監測站", Color: "#722ed1", Icon: "weather", Description: "監測氣象資料"},
	"radiation": {Code: "radiation", Label: "輻射監測站", Color: "#f5222d", Icon: "radiation", Description: "監測環境輻射量"},
}

var unknownStationType = Category{Code: "unknown", Label: "其他監測站", Color: "#d9d9d9", Icon: "environment", Description: "其他類型監測站"}

var stationStatuses = map[string]Category{
	"normal":      {Code: "normal", Label: "正常", Color: "#52c41a", Badge: "success"},
	"online":      {Code: "online", Label: "正常", Color: "#52c41a", Badge: "success"},
	"maintenance": {Code: "maintenance", Label: "維護中", Color: "#faad14", Badge: "warning"},
	"offline":     {Code: "offline", Label: "離線", Color: "#f5222d", Badge: "error"},
	"abnormal":    {Code: "abnormal", Label: "異常", Color: "#fa8c16", Badge: "warning"},
}

var unknownStationStatus = Category{Code: "unknown", Label: "未知", Color: "#d9d9d9", Badge: "default"}

var wasteTypes = map[string]Category{
	"household":  {Code: "household", Label: "家戶垃圾", Color: "#52c41a", Icon: "home"},
	"commercial": {Code: "commercial", Label: "事業廢棄物", Color: "#1890ff", Icon: "shop"},
	"industrial": {Code: "industrial", Label: "工業廢棄物", Color: "#fa8c16", Icon: "build"},
	"hazardous":  {Code: "hazardous", Label: "有害廢棄物", Color: "#f5222d", Icon: "warning"},
	"recyclable": {Code: "recyclable", Label: "資源回收", Color: "#52c41a", Icon: "recycle"},
	"organic":    {Code: "organic", Label: "廚餘", Color: "#a0d911", Icon: "leaf"},
}

var unknownWasteType = Category{Code: "other", Label: "其他", Color: "#d9d9d9", Icon: "question"}
