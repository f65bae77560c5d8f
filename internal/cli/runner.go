package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"shopfront/internal/api"
	"shopfront/internal/cart"
	"shopfront/internal/catalog"
	"shopfront/internal/config"
	"shopfront/internal/domain"
	"shopfront/internal/fetch"
	"shopfront/internal/repository/file"
	"shopfront/internal/session"
	"shopfront/internal/telemetry"
)

const railLimit = 8

// Runner wires the full client stack behind an interactive command loop.
type Runner struct {
	cfg     *config.Config
	client  *api.Client
	session *session.Manager
	cart    *cart.Synchronizer
	listing *catalog.Listing
	detail  *catalog.Detail
	rail    *catalog.Rail
	events  *telemetry.Sender
	out     io.Writer

	// lastProductID anchors the recommendation rail after a product view.
	lastProductID int64
}

// NewRunner builds the component graph from configuration.
func NewRunner(cfg *config.Config, out io.Writer) *Runner {
	client := api.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout)
	store := file.NewStore(cfg.SessionFile)
	manager := session.NewManager(client, store)

	r := &Runner{
		cfg:     cfg,
		client:  client,
		session: manager,
		cart:    cart.NewSynchronizer(client, manager),
		listing: catalog.NewListing(client, cfg.PageSize),
		detail:  catalog.NewDetail(client),
		rail:    catalog.NewRail(client),
		events:  telemetry.NewSender(client, manager, cfg.TelemetryRate, cfg.TelemetryBurst),
		out:     out,
	}
	return r
}

// Start restores the persisted session and hooks the cart to identity
// changes.
func (r *Runner) Start(ctx context.Context) {
	r.session.Subscribe(func() {
		// The optimistic adoption inside Initialize also notifies; the cart
		// waits for the revalidated identity instead of chasing it.
		if !r.session.Ready() {
			return
		}
		r.cart.OnSessionChange(ctx)
	})
	r.session.Initialize(ctx)

	if user, _ := r.session.Current(); user != nil {
		fmt.Fprintf(r.out, "welcome back, %s\n", user.Email)
	}
}

// Run reads commands until EOF or quit.
func (r *Runner) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(r.out, `type "help" for commands`)

	for {
		fmt.Fprint(r.out, "> ")
		if !scanner.Scan() {
			break
		}
		cmd, ok := ParseLine(scanner.Text())
		if !ok {
			continue
		}
		if cmd.Name == "quit" || cmd.Name == "exit" {
			break
		}
		r.handle(ctx, cmd)

		if ctx.Err() != nil {
			break
		}
	}
	return scanner.Err()
}

// Close flushes telemetry and cancels any in-flight view fetches.
func (r *Runner) Close() {
	r.listing.Close()
	r.detail.Close()
	r.rail.Close()
	r.events.Close()
}

func (r *Runner) handle(ctx context.Context, cmd *Command) {
	switch cmd.Name {
	case "help":
		r.printHelp()
	case "register":
		r.register(ctx, cmd.Args)
	case "login":
		r.login(ctx, cmd.Args)
	case "logout":
		r.session.Logout()
		fmt.Fprintln(r.out, "logged out")
	case "whoami":
		r.whoami()
	case "browse":
		<-r.listing.Load(ctx)
		r.renderListing()
	case "search":
		<-r.listing.SetQuery(ctx, strings.Join(cmd.Args, " "))
		r.renderListing()
	case "category":
		<-r.listing.SetCategory(ctx, strings.Join(cmd.Args, " "))
		r.renderListing()
	case "sort":
		if len(cmd.Args) < 2 {
			fmt.Fprintln(r.out, "usage: sort <name|price> <asc|desc>")
			return
		}
		<-r.listing.SetSort(ctx, cmd.Args[0], cmd.Args[1])
		r.renderListing()
	case "page":
		if len(cmd.Args) < 1 {
			fmt.Fprintln(r.out, "usage: page <number>")
			return
		}
		page, err := strconv.Atoi(cmd.Args[0])
		if err != nil {
			fmt.Fprintln(r.out, "usage: page <number>")
			return
		}
		<-r.listing.SetPage(ctx, page)
		r.renderListing()
	case "reset":
		<-r.listing.ResetFilters(ctx)
		r.renderListing()
	case "view":
		r.view(ctx, cmd.Args)
	case "recs":
		r.recommendations(ctx)
	case "cart":
		if err := r.cart.Refresh(ctx); err != nil {
			r.printError(err)
			return
		}
		r.renderCart()
	case "add":
		r.addToCart(ctx, cmd.Args)
	case "update":
		r.updateCart(ctx, cmd.Args)
	case "remove":
		r.removeFromCart(ctx, cmd.Args)
	case "checkout":
		r.checkout(ctx)
	default:
		fmt.Fprintf(r.out, "unknown command %q, type \"help\"\n", cmd.Name)
	}
}

func (r *Runner) printHelp() {
	fmt.Fprint(r.out, `commands:
  register <email> <password> [name]   create an account
  login <email> <password>             sign in
  logout                               sign out
  whoami                               show the current identity
  browse                               show the catalog
  search <terms>                       filter by text
  category <name>                      filter by category ("all" clears)
  sort <name|price> <asc|desc>         change ordering
  page <number>                        go to a page
  reset                                clear all filters
  view <product-id>                    open a product page
  recs                                 show recommendations
  cart                                 show the cart
  add <product-id> <quantity>          add to the cart
  update <item-id> <quantity>          change a line (0 removes)
  remove <item-id>                     remove a line
  checkout                             place the order
  quit                                 leave
`)
}

func (r *Runner) register(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(r.out, "usage: register <email> <password> [name]")
		return
	}
	payload := api.RegisterPayload{Email: args[0], Password: args[1]}
	if len(args) > 2 {
		name := strings.Join(args[2:], " ")
		payload.FullName = &name
	}
	if err := r.session.Register(ctx, payload); err != nil {
		r.printError(err)
		return
	}
	user, _ := r.session.Current()
	fmt.Fprintf(r.out, "account created for %s\n", user.Email)
}

func (r *Runner) login(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(r.out, "usage: login <email> <password>")
		return
	}
	if err := r.session.Login(ctx, args[0], args[1]); err != nil {
		r.printError(err)
		return
	}
	user, _ := r.session.Current()
	fmt.Fprintf(r.out, "signed in as %s\n", user.Email)
}

func (r *Runner) whoami() {
	user, _ := r.session.Current()
	if user == nil {
		fmt.Fprintln(r.out, "not signed in")
		return
	}
	name := ""
	if user.FullName != nil {
		name = " (" + *user.FullName + ")"
	}
	fmt.Fprintf(r.out, "%s%s\n", user.Email, name)
}

func (r *Runner) view(ctx context.Context, args []string) {
	routeID := ""
	if len(args) > 0 {
		routeID = args[0]
	}

	<-r.detail.Load(ctx, routeID)

	state, result, err := r.detail.Snapshot()
	if state == fetch.StateErrored {
		r.printError(err)
		return
	}

	product := result.Product
	fmt.Fprintf(r.out, "#%d %s  %s\n", product.ID, product.Name, money(product.Price, product.Currency))
	if product.Description != "" {
		fmt.Fprintf(r.out, "  %s\n", product.Description)
	}
	if len(result.Related) > 0 {
		fmt.Fprintln(r.out, "related:")
		for _, p := range result.Related {
			fmt.Fprintf(r.out, "  #%d %s  %s\n", p.ID, p.Name, money(p.Price, p.Currency))
		}
	}

	r.lastProductID = product.ID
	r.events.View(product.ID)
}

func (r *Runner) recommendations(ctx context.Context) {
	railContext := catalog.ContextHome
	if r.lastProductID > 0 {
		railContext = catalog.ContextProduct
	}
	<-r.rail.Load(ctx, railContext, r.lastProductID, railLimit)

	state, items, err := r.rail.Snapshot()
	if state == fetch.StateErrored {
		r.printError(err)
		return
	}
	if len(items) == 0 {
		fmt.Fprintln(r.out, "no recommendations right now")
		return
	}
	for _, p := range items {
		fmt.Fprintf(r.out, "  #%d %s  %s\n", p.ID, p.Name, money(p.Price, p.Currency))
	}
}

func (r *Runner) addToCart(ctx context.Context, args []string) {
	productID, quantity, ok := r.idAndQuantity(args, "usage: add <product-id> <quantity>")
	if !ok {
		return
	}
	if err := r.cart.AddItem(ctx, productID, quantity); err != nil {
		r.printError(err)
		return
	}
	r.events.AddToCart(productID, quantity)
	r.renderCart()
}

func (r *Runner) updateCart(ctx context.Context, args []string) {
	itemID, quantity, ok := r.idAndQuantity(args, "usage: update <item-id> <quantity>")
	if !ok {
		return
	}
	// Resolve the line to its product before the mutation replaces the
	// mirror; telemetry carries product ids, not cart line ids.
	productID := r.productForItem(itemID)
	if err := r.cart.UpdateItem(ctx, itemID, quantity); err != nil {
		r.printError(err)
		return
	}
	if productID != 0 {
		r.events.UpdateCart(productID, quantity)
	}
	r.renderCart()
}

func (r *Runner) productForItem(itemID int64) int64 {
	current := r.cart.Cart()
	if current == nil {
		return 0
	}
	for _, item := range current.Items {
		if item.ID == itemID {
			return item.Product.ID
		}
	}
	return 0
}

func (r *Runner) removeFromCart(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(r.out, "usage: remove <item-id>")
		return
	}
	itemID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintln(r.out, "usage: remove <item-id>")
		return
	}
	if err := r.cart.RemoveItem(ctx, itemID); err != nil {
		r.printError(err)
		return
	}
	r.renderCart()
}

func (r *Runner) checkout(ctx context.Context) {
	// Capture the lines before checkout clears them; each purchased product
	// gets its own telemetry event.
	var purchased []domain.CartItem
	if current := r.cart.Cart(); current != nil {
		purchased = current.Items
	}

	result, err := r.cart.Checkout(ctx)
	if err != nil {
		r.printError(err)
		return
	}

	for _, item := range purchased {
		r.events.PseudoPurchase(item.Product.ID, item.Quantity)
	}

	fmt.Fprintf(r.out, "order %s confirmed: %s\n",
		result.Order.Reference, money(result.Order.TotalAmount, result.Order.Currency))
}

func (r *Runner) idAndQuantity(args []string, usage string) (int64, int, bool) {
	if len(args) < 2 {
		fmt.Fprintln(r.out, usage)
		return 0, 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintln(r.out, usage)
		return 0, 0, false
	}
	quantity, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Fprintln(r.out, usage)
		return 0, 0, false
	}
	return id, quantity, true
}

func (r *Runner) renderListing() {
	state, page, err := r.listing.Snapshot()
	if state == fetch.StateErrored {
		r.printError(err)
		return
	}
	if page == nil {
		return
	}

	params := r.listing.Params()
	if len(page.Items) == 0 {
		fmt.Fprintln(r.out, "no products match")
		return
	}
	for _, p := range page.Items {
		category := ""
		if p.Category != nil {
			category = "  [" + *p.Category + "]"
		}
		fmt.Fprintf(r.out, "  #%d %s  %s%s\n", p.ID, p.Name, money(p.Price, p.Currency), category)
	}
	if page.Pagination != nil {
		fmt.Fprintf(r.out, "page %d/%d (%d products)\n",
			page.Pagination.Page, page.Pagination.TotalPages, page.Pagination.TotalItems)
	}
	if params.Category != "all" || params.Query != "" {
		fmt.Fprintf(r.out, "filters: category=%s q=%q\n", params.Category, params.Query)
	}
}

func (r *Runner) renderCart() {
	current := r.cart.Cart()
	if current == nil || len(current.Items) == 0 {
		fmt.Fprintln(r.out, "cart is empty")
		return
	}
	for _, item := range current.Items {
		fmt.Fprintf(r.out, "  item %d: %dx %s  %s\n",
			item.ID, item.Quantity, item.Product.Name, money(item.LineTotal, current.Currency))
	}
	fmt.Fprintf(r.out, "subtotal: %s (%d items)\n",
		money(current.Subtotal, current.Currency), current.ItemCount)
}

func (r *Runner) printError(err error) {
	if err == nil {
		return
	}
	var apiErr *api.APIError
	switch {
	case errors.As(err, &apiErr):
		fmt.Fprintf(r.out, "error: %s\n", apiErr.Message)
	case errors.Is(err, domain.ErrAuthRequired):
		fmt.Fprintln(r.out, "error: sign in first")
	default:
		fmt.Fprintf(r.out, "error: %s\n", err.Error())
	}
}

func money(amount float64, currency string) string {
	return fmt.Sprintf("%.2f %s", amount, currency)
}
