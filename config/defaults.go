package config

// 기본 신뢰 도메인 목록. 허용 목록은 호스트 접미사로 비교한다.
var defaultTrusted = []string{
	"bbc.com", "cnn.com", "reuters.com", "apnews.com", "nytimes.com",
	"nationalgeographic.com", "theguardian.com", "aljazeera.com", "abcnews.go.com",
	"nbcnews.com", "smithsonianmag.com", "nature.com", "livescience.com", "history.com",
	"sky.com", "sciencealert.com", "bloomberg.com", "washingtonpost.com", "wsj.com",
	"economist.com", "pbs.org",
}

var defaultSecondary = []string{
	"yahoo.com", "yahoo.co.uk", "rawstory.com", "forbes.com", "vice.com", "time.com",
	"vox.com", "bbc.co.uk", "independent.co.uk", "sciencedaily.com", "newscientist.com",
	"foreignpolicy.com", "cnbc.com", "barrons.com",
}

// 블로그/포럼/소셜 계열은 등급과 상관없이 항상 제외한다.
var defaultExcluded = []string{
	"medium.com", "blogspot.com", "wordpress.com", "substack.com", "tumblr.com",
	"blog", "forum", "reddit.com", "quora.com", "facebook.com",
}

var defaultExcludedPaths = []string{"/blog", "/author"}

// Default 는 설정 파일 없이도 파이프라인 전체가 동작하는 기본 설정을 반환한다.
func Default() AppConfig {
	return AppConfig{
		Logging: LoggingConfig{Level: "info"},
		Paths: PathsConfig{
			KeywordsFile: "keywords.txt",
			Output:       "out",
			Music:        "assets/bg.mp3",
			SFXShutter:   "assets/sfx_shutter.mp3",
			SFXFlash:     "assets/sfx_flash.mp3",
		},
		News: NewsConfig{
			Endpoint:          "https://news.google.com/rss/search",
			Language:          "en",
			Country:           "US",
			CEID:              "US:en",
			RequestIntervalMs: 500,
			TimeoutSec:        30,
		},
		Selection: SelectionConfig{
			Trusted:       append([]string(nil), defaultTrusted...),
			Secondary:     append([]string(nil), defaultSecondary...),
			Excluded:      append([]string(nil), defaultExcluded...),
			ExcludedPaths: append([]string(nil), defaultExcludedPaths...),
			ResolvePages:  true,
		},
		History: HistoryConfig{
			Backend:    "file",
			Path:       "history.json",
			MongoDB:    "newsshorts",
			Collection: "history",
		},
		Script: ScriptConfig{
			Provider:     "gemini",
			Model:        "gemini-2.5-flash",
			Language:     "id",
			TargetWords:  150,
			MaxKeywords:  6,
			Temperature:  0.7,
			TimeoutSec:   60,
			ExcerptChars: 4000,
		},
		Images: ImagesConfig{
			Endpoint:          "https://api.pexels.com/v1/search",
			MinCount:          4,
			MaxQueryChars:     80,
			PerPage:           1,
			RequestsPerMinute: 60,
			TimeoutSec:        20,
		},
		TTS: TTSConfig{
			Engine:     "gtts",
			Language:   "id",
			Endpoint:   "https://translate.google.com/translate_tts",
			Command:    "edge-tts",
			Voice:      "id-ID-ArdiNeural",
			ChunkChars: 100,
			TimeoutSec: 15,
		},
		Video: VideoConfig{
			Width:       1080,
			Height:      1920,
			FPS:         30,
			DurationSec: 60,
			FadeSec:     0.5,
			VoiceVolume: 1.0,
			MusicVolume: 0.18,
			SFXVolume:   0.6,
			FFmpegPath:  "ffmpeg",
			FFprobePath: "ffprobe",
		},
		Telegram: TelegramConfig{
			Endpoint:  "https://api.telegram.org",
			ParseMode: "HTML",
		},
		TikTok: TikTokConfig{
			UploadURL:   "https://www.tiktok.com/upload",
			StateFile:   "tiktok_state.json",
			WaitMinutes: 5,
		},
		Browser: BrowserConfig{
			ChromePath: "/usr/bin/chromium-browser",
		},
		Schedule: ScheduleConfig{
			Cron: "0 */6 * * *",
		},
	}
}

// applyDefaults 는 YAML 에서 0 값으로 덮어쓴 필드를 기본값으로 되돌린다.
func (c *AppConfig) applyDefaults() {
	d := Default()

	setString(&c.Logging.Level, d.Logging.Level)

	setString(&c.Paths.KeywordsFile, d.Paths.KeywordsFile)
	setString(&c.Paths.Output, d.Paths.Output)

	setString(&c.News.Endpoint, d.News.Endpoint)
	setString(&c.News.Language, d.News.Language)
	setString(&c.News.Country, d.News.Country)
	setString(&c.News.CEID, d.News.CEID)
	setInt(&c.News.TimeoutSec, d.News.TimeoutSec)

	if len(c.Selection.Trusted) == 0 {
		c.Selection.Trusted = d.Selection.Trusted
	}
	if c.Selection.Secondary == nil {
		c.Selection.Secondary = d.Selection.Secondary
	}
	if c.Selection.Excluded == nil {
		c.Selection.Excluded = d.Selection.Excluded
	}
	if c.Selection.ExcludedPaths == nil {
		c.Selection.ExcludedPaths = d.Selection.ExcludedPaths
	}

	setString(&c.History.Backend, d.History.Backend)
	setString(&c.History.Path, d.History.Path)
	setString(&c.History.MongoDB, d.History.MongoDB)
	setString(&c.History.Collection, d.History.Collection)

	setString(&c.Script.Provider, d.Script.Provider)
	setString(&c.Script.Language, d.Script.Language)
	setInt(&c.Script.TargetWords, d.Script.TargetWords)
	setInt(&c.Script.MaxKeywords, d.Script.MaxKeywords)
	setInt(&c.Script.TimeoutSec, d.Script.TimeoutSec)
	setInt(&c.Script.ExcerptChars, d.Script.ExcerptChars)
	if c.Script.Model == "" {
		switch c.Script.Provider {
		case "openai":
			c.Script.Model = "gpt-4o-mini"
		default:
			c.Script.Model = d.Script.Model
		}
	}

	setString(&c.Images.Endpoint, d.Images.Endpoint)
	setInt(&c.Images.MinCount, d.Images.MinCount)
	setInt(&c.Images.MaxQueryChars, d.Images.MaxQueryChars)
	setInt(&c.Images.PerPage, d.Images.PerPage)
	setInt(&c.Images.RequestsPerMinute, d.Images.RequestsPerMinute)
	setInt(&c.Images.TimeoutSec, d.Images.TimeoutSec)

	setString(&c.TTS.Engine, d.TTS.Engine)
	setString(&c.TTS.Language, d.TTS.Language)
	setString(&c.TTS.Endpoint, d.TTS.Endpoint)
	setString(&c.TTS.Command, d.TTS.Command)
	setInt(&c.TTS.ChunkChars, d.TTS.ChunkChars)
	setInt(&c.TTS.TimeoutSec, d.TTS.TimeoutSec)

	setInt(&c.Video.Width, d.Video.Width)
	setInt(&c.Video.Height, d.Video.Height)
	setInt(&c.Video.FPS, d.Video.FPS)
	setFloat(&c.Video.DurationSec, d.Video.DurationSec)
	setFloat(&c.Video.FadeSec, d.Video.FadeSec)
	setFloat(&c.Video.VoiceVolume, d.Video.VoiceVolume)
	setFloat(&c.Video.MusicVolume, d.Video.MusicVolume)
	setFloat(&c.Video.SFXVolume, d.Video.SFXVolume)
	setString(&c.Video.FFmpegPath, d.Video.FFmpegPath)
	setString(&c.Video.FFprobePath, d.Video.FFprobePath)

	setString(&c.Telegram.Endpoint, d.Telegram.Endpoint)
	setString(&c.Telegram.ParseMode, d.Telegram.ParseMode)

	setString(&c.TikTok.UploadURL, d.TikTok.UploadURL)
	setString(&c.TikTok.StateFile, d.TikTok.StateFile)
	setInt(&c.TikTok.WaitMinutes, d.TikTok.WaitMinutes)

	setString(&c.Browser.ChromePath, d.Browser.ChromePath)
	setString(&c.Schedule.Cron, d.Schedule.Cron)
}

func setString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func setInt(dst *int, def int) {
	if *dst <= 0 {
		*dst = def
	}
}

func setFloat(dst *float64, def float64) {
	if *dst <= 0 {
		*dst = def
	}
}
