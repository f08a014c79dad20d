package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/teahouse-dev/tea-house-client/internal/admin"
	"github.com/teahouse-dev/tea-house-client/internal/api"
	"github.com/teahouse-dev/tea-house-client/internal/config"
)

const pollInterval = 10 * time.Second

// main runs the kitchen order board: a polling view over submitted
// orders with advance and delete commands.
func main() {
	cfg := config.Load()

	log, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	client := api.New(cfg.APIBase, cfg.RequestTimeout, log)
	board := admin.NewBoard(client, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu     sync.Mutex
		latest []api.Order
	)
	go board.Watch(ctx, pollInterval, func(orders []api.Order) {
		mu.Lock()
		latest = orders
		mu.Unlock()
		printBoard(orders)
	})

	fmt.Println("Панель заказов. Команды: ls, a <id>, d <id>, quit")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, rest, _ := strings.Cut(line, " ")

		switch cmd {
		case "ls", "refresh":
			orders, err := board.Refresh(ctx)
			if err != nil {
				fmt.Printf("Не удалось обновить: %v\n", err)
				continue
			}
			mu.Lock()
			latest = orders
			mu.Unlock()
			printBoard(orders)
		case "a":
			o, ok := findOrder(&mu, &latest, rest)
			if !ok {
				continue
			}
			next, err := board.Advance(ctx, o)
			if err != nil {
				fmt.Printf("Заказ №%d: %v\n", o.ID, err)
				continue
			}
			fmt.Printf("Заказ №%d → %s\n", o.ID, next)
		case "d":
			o, ok := findOrder(&mu, &latest, rest)
			if !ok {
				continue
			}
			if err := board.Delete(ctx, o); err != nil {
				fmt.Printf("Заказ №%d: %v\n", o.ID, err)
				continue
			}
			fmt.Printf("Заказ №%d удалён\n", o.ID)
		case "quit", "exit":
			return
		default:
			fmt.Println("Команды: ls, a <id>, d <id>, quit")
		}
	}
}

func findOrder(mu *sync.Mutex, latest *[]api.Order, arg string) (api.Order, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		fmt.Println("usage: a <order id> | d <order id>")
		return api.Order{}, false
	}
	mu.Lock()
	defer mu.Unlock()
	for _, o := range *latest {
		if o.ID == id {
			return o, true
		}
	}
	fmt.Printf("Заказ №%d не на доске, выполните ls\n", id)
	return api.Order{}, false
}

func printBoard(orders []api.Order) {
	if len(orders) == 0 {
		fmt.Println("Заказов нет")
		return
	}
	for _, o := range orders {
		who := o.GuestName
		if who == "" {
			who = "гость"
		}
		fmt.Printf("№%-4d стол %-3s %-12s %s, позиций: %d\n",
			o.ID, o.TableNumber, o.Status, who, len(o.Items))
	}
}
