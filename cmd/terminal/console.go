package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/mmynk/tillpoint/internal/calculator"
	"github.com/mmynk/tillpoint/internal/models"
	"github.com/mmynk/tillpoint/internal/payment"
	"github.com/mmynk/tillpoint/internal/pos"
)

const helpText = `Commands:
  login <user> <password>     log in and resume the last bill
  logout                      log out (the bill number is kept)
  session                     check the login is still valid
  products | customers        list the loaded catalog
  scan <code>                 add an item by code, barcode or alternate code
  rm <id>                     remove a line
  qty <id> <n>                set a line's quantity (0 removes it)
  select <id>                 highlight a line
  void                        void the highlighted line
  clear                       empty the cart
  customer <code> | customer -  attach or detach a customer
  hold                        park the bill and open the next one
  held                        list held bills
  retrieve <billNo>           bring a held bill back
  checkout | back             enter or leave the payment screen
  quote <method> [amount]     evaluate cash/card/loyalty/points without paying
  pay <method> [amount]       settle the bill
  bill                        show the current bill
  quit                        exit`

// listingCommands print their own output instead of the bill.
var listingCommands = map[string]bool{
	"help": true, "?": true, "products": true, "customers": true, "held": true, "logout": true,
}

// Console is the operator's line-oriented front end to a Terminal.
type Console struct {
	term *pos.Terminal
	in   *bufio.Scanner
	out  io.Writer
}

// NewConsole creates a console reading commands from in.
func NewConsole(term *pos.Terminal, in io.Reader, out io.Writer) *Console {
	return &Console{term: term, in: bufio.NewScanner(in), out: out}
}

// Run reads commands until quit or end of input.
func (c *Console) Run(ctx context.Context) {
	c.prompt()
	for c.in.Scan() {
		if ctx.Err() != nil {
			return
		}
		fields := strings.Fields(c.in.Text())
		if len(fields) > 0 {
			if quit := c.Exec(ctx, fields[0], fields[1:]); quit {
				return
			}
		}
		c.prompt()
	}
}

func (c *Console) prompt() {
	fmt.Fprint(c.out, "pos> ")
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

// Exec runs one command and reports whether the console should exit.
func (c *Console) Exec(ctx context.Context, cmd string, args []string) bool {
	var err error
	cmd = strings.ToLower(cmd)
	switch cmd {
	case "quit", "exit":
		return true
	case "help", "?":
		c.printf("%s", helpText)
	case "login":
		err = c.login(ctx, args)
	case "logout":
		c.term.Logout()
		c.printf("Logged out")
	case "session":
		if err = c.term.CheckSession(ctx); err == nil {
			c.printf("Session ok")
		}
	case "products":
		c.products()
	case "customers":
		c.customers()
	case "scan", "add":
		err = c.scan(ctx, args)
	case "rm":
		if err = need(args, 1, "rm <id>"); err == nil {
			err = c.term.RemoveFromCart(args[0])
		}
	case "qty":
		err = c.qty(args)
	case "select":
		if err = need(args, 1, "select <id>"); err == nil {
			err = c.term.SelectLine(args[0])
		}
	case "void":
		err = c.term.VoidSelectedLine()
	case "clear":
		err = c.term.ClearCart()
	case "customer":
		err = c.customer(args)
	case "hold":
		var billNo int64
		if billNo, err = c.term.Hold(ctx); err == nil {
			c.printf("Held bill %d", billNo)
		}
	case "held":
		err = c.held(ctx)
	case "retrieve":
		err = c.retrieve(ctx, args)
	case "checkout":
		err = c.term.Checkout()
	case "back":
		err = c.term.BackToCart()
	case "quote":
		err = c.quote(args)
	case "pay":
		err = c.pay(ctx, args)
	case "bill":
	default:
		c.printf("Unknown command %q, type help", cmd)
		return false
	}

	if err != nil {
		c.printf("Error: %v", err)
		return false
	}
	if !listingCommands[cmd] {
		c.showBill()
	}
	return false
}

func need(args []string, n int, usage string) error {
	if len(args) < n {
		return fmt.Errorf("usage: %s", usage)
	}
	return nil
}

func (c *Console) login(ctx context.Context, args []string) error {
	if err := need(args, 2, "login <user> <password>"); err != nil {
		return err
	}
	u, err := c.term.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	resumed, err := c.term.Resume(ctx)
	if err != nil {
		return err
	}
	c.printf("Welcome %s (%s)", u.DisplayName, u.Role)
	if resumed {
		c.printf("Resumed the previous bill")
	}
	return nil
}

func (c *Console) scan(ctx context.Context, args []string) error {
	if err := need(args, 1, "scan <code>"); err != nil {
		return err
	}
	p, err := c.term.Scan(ctx, args[0])
	if err != nil {
		return err
	}
	c.printf("Added %s %s @ %s", p.ID, p.Name, calculator.Round2(p.Price))
	return nil
}

func (c *Console) qty(args []string) error {
	if err := need(args, 2, "qty <id> <n>"); err != nil {
		return err
	}
	n, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("quantity must be a whole number")
	}
	return c.term.UpdateQuantity(args[0], n)
}

func (c *Console) customer(args []string) error {
	if err := need(args, 1, "customer <code> | customer -"); err != nil {
		return err
	}
	if args[0] == "-" {
		return c.term.ClearCustomer()
	}
	cu, err := c.term.SelectCustomer(args[0])
	if err != nil {
		return err
	}
	c.printf("Customer %s, %d points", cu.DisplayName(), cu.LoyaltyPoints)
	return nil
}

func (c *Console) held(ctx context.Context) error {
	bills, err := c.term.HeldBills(ctx)
	if err != nil {
		return err
	}
	if len(bills) == 0 {
		c.printf("No held bills")
		return nil
	}
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BILL\tCUSTOMER\tHELD AT")
	for _, b := range bills {
		fmt.Fprintf(w, "%d\t%s\t%s\n", b.BillNo, b.CustomerCode, b.HeldDate.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func (c *Console) retrieve(ctx context.Context, args []string) error {
	if err := need(args, 1, "retrieve <billNo>"); err != nil {
		return err
	}
	n, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return pos.ErrInvalidBillNumber
	}
	return c.term.Retrieve(ctx, n)
}

func parseTender(args []string) (payment.Tender, error) {
	if err := need(args, 1, "<cash|card|loyalty|points> [amount]"); err != nil {
		return payment.Tender{}, err
	}
	t := payment.Tender{Method: models.PaymentMethod(strings.ToLower(args[0]))}
	if !t.Method.Valid() {
		return payment.Tender{}, fmt.Errorf("unknown payment method %q", args[0])
	}
	if len(args) > 1 {
		if t.Method.UsesPoints() {
			n, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return payment.Tender{}, fmt.Errorf("points must be a whole number")
			}
			t.PointsUsed = n
		} else {
			t.AmountTendered = args[1]
		}
	}
	return t, nil
}

func (c *Console) quote(args []string) error {
	t, err := parseTender(args)
	if err != nil {
		return err
	}
	q, err := c.term.Quote(t)
	if err != nil {
		return err
	}
	c.printQuote(q)
	return nil
}

func (c *Console) printQuote(q payment.Quote) {
	c.printf("Total %s  tendered %s  change %s", calculator.Round2(q.Total), calculator.Round2(q.Tendered), calculator.Round2(q.Change))
	if q.CanComplete {
		c.printf("Ready to complete")
	} else {
		c.printf("Cannot complete: %s", q.Reason)
	}
}

func (c *Console) pay(ctx context.Context, args []string) error {
	t, err := parseTender(args)
	if err != nil {
		return err
	}
	r, err := c.term.CompletePayment(ctx, t)
	if err != nil {
		return err
	}
	c.printf("Bill %d paid by %s: total %s, change %s", r.BillNo, r.Method, calculator.Round2(r.Total), calculator.Round2(r.Change))
	if !r.DetailSaved || !r.MarkedPaid {
		c.printf("Warning: the backend did not record the whole settlement, see logs")
	}
	return nil
}

func (c *Console) products() {
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tNAME\tPRICE\tBARCODE")
	for _, p := range c.term.Products() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Name, calculator.Round2(p.Price), p.ManufacturerID)
	}
	w.Flush()
}

func (c *Console) customers() {
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tNAME\tPOINTS\tLOCKED")
	for _, cu := range c.term.Customers() {
		fmt.Fprintf(w, "%s\t%s\t%d\t%v\n", cu.Code, cu.DisplayName(), cu.LoyaltyPoints, cu.Locked())
	}
	w.Flush()
}

func (c *Console) showBill() {
	s, err := c.term.Bill()
	if err != nil {
		return
	}
	header := fmt.Sprintf("Bill %d [%s]", s.BillNo, s.Status)
	if s.Customer != nil {
		header += " customer " + s.Customer.DisplayName()
	} else if s.CustomerCode != "" {
		header += " customer " + s.CustomerCode
	}
	c.printf("%s", header)

	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	for _, l := range s.Lines {
		mark := " "
		if l.ID == s.Selected {
			mark = ">"
		}
		void := ""
		if l.Voided {
			void = "VOID"
		}
		fmt.Fprintf(w, "%s %s\t%s\t%d x %s\t%s\t%s\n", mark, l.ID, l.Name, l.Quantity, calculator.Round2(l.Price), calculator.Round2(l.Amount()), void)
	}
	w.Flush()

	t := calculator.Compute(s.Lines)
	c.printf("Subtotal %s  Tax %s  Total %s", calculator.Round2(t.Subtotal), calculator.Round2(t.Tax), calculator.Round2(t.Total))
}
