package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/wfunc/clip-game/internal/admin"
	"github.com/wfunc/clip-game/internal/config"
	"github.com/wfunc/clip-game/internal/database"
	"github.com/wfunc/clip-game/internal/logger"
	"github.com/wfunc/clip-game/internal/service"
)

const usage = `回形针游戏维护工具

用法:
  clipadmin [-config 配置文件] <命令> [参数...]

命令:
  grant-diamonds <数量> <邮箱> [邮箱...]   批量发放钻石
  reset-password <邮箱> <新密码>           重置密码并撤销所有会话
  set-flag <邮箱> <标记> <true|false>      修正解锁标记
  migrate                                  执行数据库迁移
  show <邮箱>                              查看用户及游戏状态
`

func main() {
	configPath := flag.String("config", "", "配置文件路径")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := config.Init(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Get()

	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Cleanup()

	if err := database.Init(&cfg.Database); err != nil {
		fmt.Fprintf(os.Stderr, "初始化数据库失败: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	svcConfig := &service.Config{
		JWTSecret:          cfg.Security.JWT.Secret,
		AccessTokenExpiry:  time.Duration(cfg.Security.JWT.ExpireHours) * time.Hour,
		RefreshTokenExpiry: time.Duration(cfg.Security.JWT.RefreshHours) * time.Hour,
		InitialWire:        cfg.Game.InitialWire,
	}

	a := admin.New(database.GetDB(), svcConfig, logger.GetLogger())
	ctx := context.Background()

	if err := run(ctx, a, args); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, a *admin.Admin, args []string) error {
	command := args[0]
	args = args[1:]

	switch command {
	case "grant-diamonds":
		return runGrantDiamonds(ctx, a, args)

	case "reset-password":
		if len(args) != 2 {
			return fmt.Errorf("用法: clipadmin reset-password <邮箱> <新密码>")
		}
		if err := a.ResetPassword(ctx, args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("密码已重置: %s（所有会话已撤销）\n", args[0])
		return nil

	case "set-flag":
		if len(args) != 3 {
			return fmt.Errorf("用法: clipadmin set-flag <邮箱> <标记> <true|false>")
		}
		value, err := strconv.ParseBool(args[2])
		if err != nil {
			return fmt.Errorf("标记值必须是true或false: %s", args[2])
		}
		if err := a.SetFlag(ctx, args[0], args[1], value); err != nil {
			return err
		}
		fmt.Printf("标记已更新: %s %s=%v\n", args[0], args[1], value)
		return nil

	case "migrate":
		if err := a.Migrate(); err != nil {
			return err
		}
		fmt.Println("数据库迁移完成")
		return nil

	case "show":
		if len(args) != 1 {
			return fmt.Errorf("用法: clipadmin show <邮箱>")
		}
		return runShow(ctx, a, args[0])

	default:
		flag.Usage()
		return fmt.Errorf("未知命令: %s", command)
	}
}

func runGrantDiamonds(ctx context.Context, a *admin.Admin, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("用法: clipadmin grant-diamonds <数量> <邮箱> [邮箱...]")
	}

	amount, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || amount <= 0 {
		return fmt.Errorf("发放数量必须是正整数: %s", args[0])
	}

	results := a.GrantDiamonds(ctx, amount, args[1:])

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Printf("失败 %s: %v\n", r.Email, r.Err)
			continue
		}
		fmt.Printf("成功 %s: +%d 钻石 (订单号 %s)\n", r.Email, amount, r.OrderNo)
	}

	fmt.Printf("共处理 %d 条，失败 %d 条\n", len(results), failed)

	if failed > 0 {
		return fmt.Errorf("部分记录处理失败")
	}
	return nil
}

func runShow(ctx context.Context, a *admin.Admin, email string) error {
	info, err := a.Show(ctx, email)
	if err != nil {
		return err
	}

	fmt.Printf("用户ID:   %d\n", info.UserID)
	fmt.Printf("用户名:   %s\n", info.Username)
	fmt.Printf("邮箱:     %s\n", info.Email)
	fmt.Printf("昵称:     %s\n", info.Nickname)
	fmt.Printf("状态:     %s\n", info.Status)

	if info.State == nil {
		fmt.Println("游戏状态: 无")
		return nil
	}

	fmt.Println("游戏状态:")
	for _, key := range []string{
		"paperclips", "money", "wire", "diamonds", "totalDiamondsPurchased",
		"autoclippers", "wireHarvesters", "oreHarvesters", "factories",
		"autoclippersUnlocked", "factoriesUnlocked", "premiumUnlocked", "lastSaved",
	} {
		fmt.Printf("  %-24s %v\n", key, info.State[key])
	}

	return nil
}
