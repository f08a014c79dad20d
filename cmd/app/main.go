package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/teahouse-dev/tea-house-client/internal/api"
	"github.com/teahouse-dev/tea-house-client/internal/cart"
	"github.com/teahouse-dev/tea-house-client/internal/config"
	"github.com/teahouse-dev/tea-house-client/internal/guest"
	"github.com/teahouse-dev/tea-house-client/internal/menu"
	"github.com/teahouse-dev/tea-house-client/internal/storage"
	"github.com/teahouse-dev/tea-house-client/internal/waiter"
)

// main wires dependencies (dependency injection) and runs the guest
// terminal: menu browsing, the cart, registration, checkout and the AI
// waiter.
func main() {
	cfg := config.Load()

	log, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	kv := storage.OpenFile(cfg.StateFile, log)
	client := api.New(cfg.APIBase, cfg.RequestTimeout, log)

	cartStore := cart.NewStore(kv, log)
	if cfg.ResetOnStart {
		cartStore.Clear()
		log.Info("cart reset on start")
	}

	controller := cart.NewController(cartStore, client, log,
		cart.WithTableNumber(cfg.TableNumber),
		cart.WithCheckoutTimeout(cfg.RequestTimeout),
		cart.WithChangeListener(func(c cart.Cart) {
			fmt.Printf("cart: %d item(s), total %s₽\n", c.ItemCount(), c.Total())
		}))

	guests := guest.NewManager(kv, client, log)
	menus := menu.NewService(client, log)

	ctx := context.Background()
	catalog, err := menus.Load(ctx)
	if err != nil {
		fmt.Printf("Не удалось загрузить меню: %v\n", err)
	}
	aiWaiter := waiter.New(client, catalog, log)

	fmt.Println("Чайхана — добро пожаловать! Введите help для списка команд.")
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
		case "menu":
			printMenu(catalog)
		case "reload":
			if catalog, err = menus.Load(ctx); err != nil {
				fmt.Printf("Ошибка загрузки меню: %v\n", err)
				continue
			}
			aiWaiter = waiter.New(client, catalog, log)
			printMenu(catalog)
		case "add":
			id, err := strconv.Atoi(strings.TrimSpace(rest))
			if err != nil {
				fmt.Println("usage: add <dish id>")
				continue
			}
			d, ok := catalog.FindDish(id)
			if !ok {
				fmt.Println("Блюдо не найдено")
				continue
			}
			controller.AddItem(d.ID, d.Name, d.Price)
		case "qty":
			fields := strings.Fields(rest)
			if len(fields) != 2 {
				fmt.Println("usage: qty <dish id> <quantity>")
				continue
			}
			id, err1 := strconv.Atoi(fields[0])
			n, err2 := strconv.Atoi(fields[1])
			if err1 != nil || err2 != nil {
				fmt.Println("usage: qty <dish id> <quantity>")
				continue
			}
			controller.SetQuantity(id, n)
		case "rm":
			id, err := strconv.Atoi(strings.TrimSpace(rest))
			if err != nil {
				fmt.Println("usage: rm <dish id>")
				continue
			}
			controller.RemoveItem(id)
		case "cart":
			printCart(controller.Items())
		case "clear":
			controller.Clear()
		case "register":
			fields := strings.Fields(rest)
			if len(fields) < 2 {
				fmt.Println("usage: register <phone> <name>")
				continue
			}
			id, err := guests.Register(ctx, fields[0], strings.Join(fields[1:], " "))
			if err != nil {
				fmt.Printf("Ошибка регистрации: %v\n", err)
				continue
			}
			fmt.Printf("Добро пожаловать, %s!\n", id.Name)
		case "checkout":
			ident, _ := guests.Current()
			res, err := controller.Checkout(ctx, ident)
			if err != nil {
				fmt.Printf("Не удалось оформить заказ: %s\n", res.Message)
				continue
			}
			if res.OrderID > 0 {
				fmt.Printf("Заказ №%d оформлен! Скоро мы его приготовим.\n", res.OrderID)
			} else {
				fmt.Println("Заказ оформлен! Скоро мы его приготовим.")
			}
		case "ask":
			reply, err := aiWaiter.Ask(ctx, rest)
			if err != nil {
				fmt.Printf("Официант недоступен: %v\n", err)
				continue
			}
			fmt.Println(reply.Message)
			for _, d := range reply.Dishes {
				fmt.Printf("  → %s (%s₽), add %d\n", d.Name, d.Price, d.ID)
			}
		case "help":
			printHelp()
		case "quit", "exit":
			return
		default:
			fmt.Println("Неизвестная команда, введите help")
		}
	}
}

func printMenu(c menu.Catalog) {
	if c.Empty() {
		fmt.Println("Меню пусто — попробуйте reload")
		return
	}
	for _, sec := range c.Sections {
		fmt.Printf("== %s ==\n", sec.Category.Name)
		if len(sec.Dishes) == 0 {
			fmt.Println("  Блюда временно отсутствуют")
			continue
		}
		for _, d := range sec.Dishes {
			fmt.Printf("  [%d] %s — %s₽\n", d.ID, d.Name, d.Price)
		}
	}
}

func printCart(c cart.Cart) {
	if len(c) == 0 {
		fmt.Println("Корзина пуста")
		return
	}
	for _, it := range c {
		fmt.Printf("  [%d] %s — %s₽ × %d\n", it.ID, it.Name, it.Price, it.Quantity)
	}
	fmt.Printf("Итого: %s₽\n", c.Total())
}

func printHelp() {
	fmt.Println(`menu                     show the menu
reload                   refresh the menu from the backend
add <id>                 add a dish to the cart
qty <id> <n>             set a line quantity (0 removes)
rm <id>                  remove a dish
cart                     show the cart
clear                    empty the cart
register <phone> <name>  register as a guest
checkout                 submit the order
ask <question>           ask the AI waiter
quit                     leave`)
}
