package cmd

import (
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	internalApp "github.com/nexbyte/hackmd/internal/app"
	"github.com/nexbyte/hackmd/pkg/fileurl"
	"github.com/nexbyte/hackmd/pkg/util"

	"github.com/radovskyb/watcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// defaultConfigKeyPlaceholder 默认配置中的密钥占位，写出时替换为随机串
const defaultConfigKeyPlaceholder = "hackmd-Auth-Token"

type runFlags struct {
	dir     string // 项目根目录
	port    string // 启动端口，覆盖 server.http-port
	runMode string // 启动模式
	config  string // 配置文件路径
}

// serverHolder 配置热重载时替换 Server
type serverHolder struct {
	mu sync.Mutex
	s  *Server
}

func (h *serverHolder) get() *Server {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.s
}

func (h *serverHolder) set(s *Server) {
	h.mu.Lock()
	h.s = s
	h.mu.Unlock()
}

// findConfig 返回已存在的配置文件，都不存在时写出默认配置
func findConfig() (string, error) {
	for _, p := range []string{"config/config-dev.yaml", "config.yaml", "config/config.yaml"} {
		if fileurl.IsExist(p) {
			return p, nil
		}
	}

	path := "config/config.yaml"
	bootstrapLogger.Warn("config file not found, creating default config", zap.String("path", path))

	content := strings.Replace(assets.ConfigDefault, defaultConfigKeyPlaceholder, util.GetRandomString(32), 1)
	if err := fileurl.CreatePath(path, os.ModePerm); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", err
	}
	bootstrapLogger.Info("config file auto create successfully", zap.String("path", path))
	return path, nil
}

// watchConfig restarts the server in process whenever the config file is written.
// watchConfig 配置文件写入后在进程内重建 Server
func watchConfig(runEnv *runFlags, holder *serverHolder) {
	w := watcher.New()
	// 每个周期最多一个事件，只关心写入
	w.SetMaxEvents(1)
	w.FilterOps(watcher.Write)

	go func() {
		for {
			select {
			case event := <-w.Event:
				old := holder.get()
				old.logger.Info("config watcher change", zap.String("event", event.Op.String()), zap.String("file", event.Path))
				old.sc.SendCloseSignal(nil)
				if err := old.sc.WaitClosed(); err != nil {
					old.logger.Warn("previous server closed with error", zap.Error(err))
				}

				s, err := NewServer(runEnv)
				if err != nil {
					bootstrapLogger.Error("service restart err", zap.Error(err))
					continue
				}
				holder.set(s)

			case err := <-w.Error:
				bootstrapLogger.Error("config watcher error", zap.Error(err))
			case <-w.Closed:
				bootstrapLogger.Info("config watcher closed")
				return
			}
		}
	}()

	if err := w.Add(runEnv.config); err != nil {
		bootstrapLogger.Error("config watcher file error", zap.Error(err))
		return
	}
	if err := w.Start(time.Second * 5); err != nil {
		bootstrapLogger.Error("config watcher start error", zap.Error(err))
	}
}

func init() {
	runEnv := new(runFlags)

	var runCommand = &cobra.Command{
		Use:   "run [-c config_file] [-d working_dir] [-p port]",
		Short: "Run service",
		Run: func(cmd *cobra.Command, args []string) {
			if len(runEnv.dir) > 0 {
				if err := os.Chdir(runEnv.dir); err != nil {
					bootstrapLogger.Error("failed to change the current working directory", zap.Error(err))
				}
				bootstrapLogger.Info("working directory changed", zap.String("dir", runEnv.dir))
			}

			if len(runEnv.config) == 0 {
				p, err := findConfig()
				if err != nil {
					bootstrapLogger.Error("config file auto create error", zap.Error(err))
					return
				}
				runEnv.config = p
			}

			s, err := NewServer(runEnv)
			if err != nil {
				bootstrapLogger.Error("api service start err", zap.Error(err))
				return
			}
			holder := &serverHolder{s: s}

			go watchConfig(runEnv, holder)

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
			sig := <-quit

			s = holder.get()
			s.logger.Info("Received signal, initiating graceful shutdown...", zap.String("signal", sig.String()))
			s.sc.SendCloseSignal(nil)

			// 等待所有关闭处理器完成（包括 App Container 的优雅关闭）
			if err := s.sc.WaitClosed(); err != nil {
				s.logger.Error("Shutdown completed with error", zap.Error(err))
			} else {
				s.logger.Info("Service has been shut down gracefully.")
			}
			_ = s.logger.Sync()

			// SIGHUP 以相同参数重新执行当前二进制
			if sig == syscall.SIGHUP {
				exe, err := os.Executable()
				if err != nil {
					bootstrapLogger.Error("Failed to locate executable", zap.Error(err))
					return
				}
				if err := internalApp.RestartProcess(exe, os.Args, os.Environ()); err != nil {
					bootstrapLogger.Error("Failed to restart process", zap.Error(err))
				}
			}
		},
	}

	rootCmd.AddCommand(runCommand)
	fs := runCommand.Flags()
	fs.StringVarP(&runEnv.dir, "dir", "d", "", "run dir")
	fs.StringVarP(&runEnv.port, "port", "p", "", "run port")
	fs.StringVarP(&runEnv.runMode, "mode", "m", "", "run mode")
	fs.StringVarP(&runEnv.config, "config", "c", "", "config file")
}
