package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

type AppConfig struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Paths     PathsConfig     `yaml:"paths"`
	News      NewsConfig      `yaml:"news"`
	Selection SelectionConfig `yaml:"selection"`
	History   HistoryConfig   `yaml:"history"`
	Script    ScriptConfig    `yaml:"script"`
	Images    ImagesConfig    `yaml:"images"`
	TTS       TTSConfig       `yaml:"tts"`
	Video     VideoConfig     `yaml:"video"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	TikTok    TikTokConfig    `yaml:"tiktok"`
	Browser   BrowserConfig   `yaml:"browser"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// PathsConfig 는 파이프라인 스테이지 사이에서 주고받는 파일 경로의 기본값이다.
// CLI 플래그가 주어지면 플래그가 우선한다.
type PathsConfig struct {
	KeywordsFile string `yaml:"keywords_file"`
	Output       string `yaml:"output"`
	Music        string `yaml:"music"`
	SFXShutter   string `yaml:"sfx_shutter"`
	SFXFlash     string `yaml:"sfx_flash"`
}

// NewsConfig 는 Google News RSS 검색 엔드포인트 설정이다.
type NewsConfig struct {
	Endpoint string `yaml:"endpoint"`
	Language string `yaml:"language"`
	Country  string `yaml:"country"`
	CEID     string `yaml:"ceid"`
	// RequestIntervalMs 는 같은 호스트에 대한 연속 요청 사이의 최소 간격이다.
	RequestIntervalMs int `yaml:"request_interval_ms"`
	TimeoutSec        int `yaml:"timeout_sec"`
}

// SelectionConfig 는 뉴스 선택 휴리스틱의 신뢰 정책이다.
type SelectionConfig struct {
	Trusted       []string `yaml:"trusted"`
	Secondary     []string `yaml:"secondary"`
	Excluded      []string `yaml:"excluded"`
	ExcludedPaths []string `yaml:"excluded_paths"`
	// AllowUnlisted 가 true 이면 두 허용 목록 어디에도 없는 (블로그가 아닌) 도메인도
	// 마지막 단계에서 허용한다.
	AllowUnlisted bool `yaml:"allow_unlisted"`
	// ResolvePages 가 true 이면 디코딩할 수 없는 리다이렉트 링크에 대해 페이지를 직접 가져와 본다.
	ResolvePages bool `yaml:"resolve_pages"`
}

type HistoryConfig struct {
	Backend    string `yaml:"backend"` // file | mongo
	Path       string `yaml:"path"`
	MongoURI   string `yaml:"mongo_uri"`
	MongoDB    string `yaml:"mongo_db"`
	Collection string `yaml:"collection"`
}

type ScriptConfig struct {
	Provider      string  `yaml:"provider"` // gemini | openai | template
	Model         string  `yaml:"model"`
	Language      string  `yaml:"language"`
	TargetWords   int     `yaml:"target_words"`
	MaxKeywords   int     `yaml:"max_keywords"`
	Temperature   float64 `yaml:"temperature"`
	TimeoutSec    int     `yaml:"timeout_sec"`
	EnrichArticle bool    `yaml:"enrich_article"`
	ExcerptChars  int     `yaml:"excerpt_chars"`

	// LLM 호출 한도. 0 이하이면 제한 없음
	RequestsPerDay    int `yaml:"requests_per_day"`
	RequestsPerMinute int `yaml:"requests_per_minute"`

	APIKey string `yaml:"-"`
}

type ImagesConfig struct {
	Endpoint          string `yaml:"endpoint"`
	MinCount          int    `yaml:"min_count"`
	MaxQueryChars     int    `yaml:"max_query_chars"`
	PerPage           int    `yaml:"per_page"`
	UseArticleImage   bool   `yaml:"use_article_image"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
	TimeoutSec        int    `yaml:"timeout_sec"`
	APIKey            string `yaml:"-"`
}

type TTSConfig struct {
	Engine     string `yaml:"engine"` // gtts | command
	Language   string `yaml:"language"`
	Endpoint   string `yaml:"endpoint"`
	Command    string `yaml:"command"`
	Voice      string `yaml:"voice"`
	ChunkChars int    `yaml:"chunk_chars"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

type VideoConfig struct {
	Width             int     `yaml:"width"`
	Height            int     `yaml:"height"`
	FPS               int     `yaml:"fps"`
	DurationSec       float64 `yaml:"duration_sec"`
	DurationFromVoice bool    `yaml:"duration_from_voice"`
	FadeSec           float64 `yaml:"fade_sec"`
	VoiceVolume       float64 `yaml:"voice_volume"`
	MusicVolume       float64 `yaml:"music_volume"`
	SFX               bool    `yaml:"sfx"`
	SFXVolume         float64 `yaml:"sfx_volume"`
	WorkDir           string  `yaml:"work_dir"`
	KeepWork          bool    `yaml:"keep_work"`
	FFmpegPath        string  `yaml:"ffmpeg_path"`
	FFprobePath       string  `yaml:"ffprobe_path"`
}

type TelegramConfig struct {
	Endpoint  string `yaml:"endpoint"`
	ParseMode string `yaml:"parse_mode"`
	Token     string `yaml:"-"`
	ChatID    string `yaml:"-"`
}

type TikTokConfig struct {
	UploadURL   string `yaml:"upload_url"`
	StateFile   string `yaml:"state_file"`
	WaitMinutes int    `yaml:"wait_minutes"`
	Headless    bool   `yaml:"headless"`
}

type BrowserConfig struct {
	ChromePath string `yaml:"chrome_path"`
}

type ScheduleConfig struct {
	Cron     string `yaml:"cron"`
	Timezone string `yaml:"timezone"`
}

var config *AppConfig

// InitApp 은 .env 와 설정 파일을 읽어 전역 설정을 초기화한다.
// path 가 비어 있으면 현재 디렉터리부터 상위로 올라가며 config.yaml 을 찾는다.
// 설정 파일이 없으면 기본값으로 동작한다.
func InitApp(path string) error {
	base := GetBasePath()
	if path != "" {
		base = filepath.Dir(path)
	}
	_ = godotenv.Load(filepath.Join(base, ENV_FILE))

	if path == "" && base != "" {
		path = filepath.Join(base, CONFIG_FILE)
	}

	c, err := Load(path)
	if err != nil {
		return err
	}
	config = c
	return nil
}

// Load 는 주어진 YAML 파일을 읽고 기본값과 환경변수 오버라이드를 적용한다.
// 파일이 존재하지 않으면 기본 설정을 반환한다.
func Load(path string) (*AppConfig, error) {
	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &c); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	c.applyDefaults()
	c.applyEnvOverrides()
	return &c, nil
}

func GetConfig() AppConfig {
	if config == nil {
		if err := InitApp(""); err != nil {
			panic(err)
		}
	}

	return *config
}

// SetConfig 는 전역 설정을 교체한다. 테스트와 run 커맨드에서 사용한다.
func SetConfig(c AppConfig) {
	config = &c
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func (c *AppConfig) applyEnvOverrides() {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	switch strings.ToLower(c.Script.Provider) {
	case "gemini":
		c.Script.APIKey = os.Getenv("GEMINI_API_KEY")
	case "openai":
		c.Script.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if v := os.Getenv("PEXELS_KEY"); v != "" {
		c.Images.APIKey = v
	}
	if v := os.Getenv("TG_TOKEN"); v != "" {
		c.Telegram.Token = v
	}
	if v := os.Getenv("TG_CHAT"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("TIKTOK_STATE"); v != "" {
		c.TikTok.StateFile = v
	}
	if v := os.Getenv("CHROME_PATH"); v != "" {
		c.Browser.ChromePath = v
	}
	if v := os.Getenv("MONGO_URI"); v != "" {
		c.History.MongoURI = v
	}
}
