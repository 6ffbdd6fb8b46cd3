// resume-parser 启发式简历解析服务与命令行工具。
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	version     = "1.0.0"         //nolint:gochecknoglobals
	serviceName = "resume-parser" //nolint:gochecknoglobals
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "resume-parser",
	Short:         "Heuristic resume parser",
	Long:          "Extracts name, contact details, skills, experience and projects from PDF, DOCX and TXT resumes.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	addGlobalFlags(rootCmd.PersistentFlags())
}

func addGlobalFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&configPath, "config", "c", "", "配置文件路径，为空时在常见位置查找")
}

func main() {
	// .env 不存在时忽略
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
