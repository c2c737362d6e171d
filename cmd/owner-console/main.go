// owner-console 是车主库存管理的终端入口：
// 用与 Web 端相同的视图层（乐观翻转 / 删除后回源）驱动 API。
//
// 用法:
//
//	owner-console -addr http://localhost:3000 -token <jwt> list
//	owner-console -addr http://localhost:3000 -token <jwt> toggle <carId>
//	owner-console -addr http://localhost:3000 -token <jwt> delete <carId>
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/CarLinkRent/CarLinkRent/pkg/client"
)

var (
	addr  = flag.String("addr", "http://localhost:3000", "API 服务地址")
	token = flag.String("token", "", "JWT token（车主身份）")
)

// stdoutNotifier 把视图层的提示打到终端（对应 Web 端的 toast）。
type stdoutNotifier struct{}

func (stdoutNotifier) Success(message string) { fmt.Println("ok:", message) }
func (stdoutNotifier) Error(message string)   { fmt.Fprintln(os.Stderr, "error:", message) }

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [flags] list | toggle <carId> | delete <carId>\n", os.Args[0])
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
	}

	api := client.New(*addr, *token)
	view := client.NewManageInventoryView(api, stdoutNotifier{})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 视图激活时先拉一次列表（toggle/delete 依赖本地快照）
	if err := view.Refresh(ctx); err != nil {
		os.Exit(1)
	}

	switch args[0] {
	case "list":
		printCars(view.Store().Cars())
	case "toggle":
		if len(args) != 2 {
			usage()
		}
		if err := view.ToggleCar(ctx, args[1]); err != nil {
			os.Exit(1)
		}
		printCars(view.Store().Cars())
	case "delete":
		if len(args) != 2 {
			usage()
		}
		if err := view.DeleteCar(ctx, args[1]); err != nil {
			os.Exit(1)
		}
		printCars(view.Store().Cars())
	default:
		usage()
	}
}

func printCars(cars []client.Car) {
	if len(cars) == 0 {
		fmt.Println("(no cars)")
		return
	}
	for _, c := range cars {
		status := "unavailable"
		if c.IsAvailable {
			status = "available"
		}
		fmt.Printf("%-36s  %-12s %-12s %8.2f/day  %s\n", c.ID, c.Brand, c.Model, c.PricePerDay, status)
	}
}
