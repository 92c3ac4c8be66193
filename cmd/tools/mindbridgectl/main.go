package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/mindbridge/checkin/backend/internal/analysis/crisis"
	"github.com/mindbridge/checkin/backend/internal/config"
	chatmodel "github.com/mindbridge/checkin/backend/internal/model/chat"
	"github.com/mindbridge/checkin/backend/internal/model/history"
	speechmodel "github.com/mindbridge/checkin/backend/internal/model/speech"
	"github.com/mindbridge/checkin/backend/internal/service/ai"
	"github.com/mindbridge/checkin/backend/internal/service/chat"
	"github.com/mindbridge/checkin/backend/internal/service/speech"
	"github.com/mindbridge/checkin/backend/internal/store"
)

const usage = `用法: mindbridgectl [flags] <command> [args]

commands:
  detect  "<text>"           只做危机识别
  chat    "<text>"           走完整的聊天流程
  checkin <mood> "<note>"    提交一次心情打卡
  speak   "<text>"           调用 Azure 语音合成
`

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute 返回进程退出码：0 成功，1 配置错误，2 用法或命令执行失败。
func execute(argv []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("mindbridgectl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	language := fs.String("lang", "", "语言代码，chat/checkin 默认 en，speak 默认 TTS_DEFAULT_LANGUAGE")
	provider := fs.String("provider", "", "文本生成服务 (gemini/openai/ark)，默认使用 AI_PROVIDER")
	persist := fs.Bool("persist", false, "写入 DATABASE_* 配置的存储，默认只写内存")
	timeout := fs.Duration("timeout", 45*time.Second, "请求超时时间")
	verbose := fs.Bool("v", false, "输出调试日志")
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(argv); err != nil {
		return 2
	}

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339}).
		Level(level).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil {
		logger.Debug().Err(err).Msg("无法加载 .env，改用系统环境变量")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error().Err(err).Msg("配置加载失败")
		return 1
	}
	if *provider != "" {
		cfg.AI.Provider = *provider
	}
	if !*persist {
		cfg.Database.Driver = "memory"
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, cfg, logger, *language, fs.Args(), stdout); err != nil {
		fmt.Fprintln(stderr, err)
		fs.Usage()
		return 2
	}
	return 0
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger, language string, args []string, out io.Writer) error {
	if len(args) < 2 {
		return fmt.Errorf("缺少命令或参数")
	}

	switch args[0] {
	case "detect":
		decision := crisis.Analyze(args[1])
		return printJSON(out, map[string]any{
			"crisis_detected": decision.Crisis,
			"kind":            decision.Kind,
			"matched":         decision.Matched,
		})
	case "chat", "checkin":
		svc, closeFn, err := newChatService(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeFn()

		if language == "" {
			language = chatmodel.DefaultLanguage
		}

		if args[0] == "chat" {
			result, err := svc.SubmitTurn(ctx, history.AnonymousUserID, chatmodel.Message{Text: args[1], Language: language})
			if err != nil {
				return err
			}
			return printJSON(out, result)
		}

		if len(args) < 3 {
			return fmt.Errorf("checkin 需要 <mood> 与 <note>")
		}
		mood, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("mood 必须是整数: %w", err)
		}
		result, err := svc.SubmitCheckin(ctx, history.AnonymousUserID, mood, args[2], language)
		if err != nil {
			return err
		}
		return printJSON(out, result)
	case "speak":
		svc := speech.NewService(speech.FromConfig(cfg.Speech), nil, logger)
		return printJSON(out, svc.Synthesize(ctx, speechmodel.TTSRequest{Text: args[1], Language: language}))
	default:
		return fmt.Errorf("未知命令 %q", args[0])
	}
}

func newChatService(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*chat.Service, func(), error) {
	db, err := store.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, nil, err
	}

	aiService, err := ai.NewService(ctx, cfg.AI, logger)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	return chat.NewService(aiService, db, cfg.Checkin, logger), db.Close, nil
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
