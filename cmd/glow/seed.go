package main

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"glow/internal/auth"
	"glow/internal/database"
	"glow/internal/invitation"
	"glow/internal/rsvp"
)

var (
	grooms = []string{"Minh Khoa", "Tuấn Anh", "Quốc Bảo", "Hoàng Nam", "Đức Huy", "Thành Long"}
	brides = []string{"Ngọc Anh", "Thu Trang", "Bảo Ngọc", "Khánh Linh", "Mai Phương", "Thảo Vy"}
	guests = []string{"Anh Nam", "Chị Hoa", "Cô Lan", "Bác Tư", "Bạn Vy", "Anh Hải", "Em Thư"}
	wishes = []string{"Trăm năm hạnh phúc!", "Chúc mừng hạnh phúc hai bạn!", "Sớm có tin vui nhé!", ""}
)

type seedResult struct {
	ID      string
	RSVPs   int
	Success bool
	Error   error
}

func seedCmd() *cobra.Command {
	var (
		owner   string
		total   int
		replies int
		workers int
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with demo invitations and replies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := openStore()
			return runSeed(cmd.Context(), store, owner, total, replies, workers)
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "demo@glow.local", "Owner email of the seeded invitations")
	cmd.Flags().IntVarP(&total, "count", "n", 20, "Number of invitations")
	cmd.Flags().IntVar(&replies, "rsvps", 8, "Maximum replies per invitation")
	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "Concurrent writers")
	return cmd
}

func runSeed(ctx context.Context, store *database.Store, ownerEmail string, total, replies, workers int) error {
	pterm.DefaultHeader.WithFullWidth().WithBackgroundStyle(pterm.NewStyle(pterm.BgLightMagenta)).WithTextStyle(pterm.NewStyle(pterm.FgBlack)).Println("GLOW DEMO SEEDER")
	pterm.Println()

	owner, err := seedOwner(ctx, store, ownerEmail)
	if err != nil {
		return err
	}

	data := pterm.TableData{
		{"Owner", color.New(color.FgCyan).Sprint(owner.Email)},
		{"Invitations", color.New(color.FgYellow).Sprintf("%d", total)},
		{"Replies", color.New(color.FgYellow).Sprintf("up to %d each", replies)},
		{"Concurrency", color.New(color.FgYellow).Sprintf("%d workers", workers)},
	}
	_ = pterm.DefaultTable.WithBoxed().WithData(data).Render()
	pterm.Println()

	bar, _ := pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle("Seeding invitations...").
		WithShowCount(true).
		WithShowElapsedTime(true).
		Start()

	svc := rsvp.NewService(store, nil)
	jobs := make(chan int, total)
	results := make(chan seedResult, total)
	var wg sync.WaitGroup
	for w := 0; w < max(workers, 1); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results <- seedOne(ctx, store, svc, owner, j, replies)
				bar.Increment()
			}
		}()
	}
	for i := 1; i <= total; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	close(results)
	bar.Stop()

	var (
		ok, rsvps int
		failures  []seedResult
	)
	for res := range results {
		if res.Success {
			ok++
			rsvps += res.RSVPs
		} else {
			failures = append(failures, res)
		}
	}

	pterm.Println()
	if len(failures) == 0 {
		pterm.DefaultSection.WithStyle(pterm.NewStyle(pterm.FgGreen)).Println("SEEDING COMPLETED SUCCESSFULLY")
		pterm.Info.Printf("Created %d invitations with %d replies.\n", ok, rsvps)
		return nil
	}
	pterm.DefaultSection.WithStyle(pterm.NewStyle(pterm.FgYellow)).Println("COMPLETED WITH ERRORS")
	pterm.Info.Printf("Success: %d | Failed: %d\n", ok, len(failures))
	pterm.Error.Println("Failure Report:")
	for _, f := range failures {
		fmt.Printf(" • %s: %v\n", color.RedString(f.ID), f.Error)
	}
	return fmt.Errorf("%d invitations failed", len(failures))
}

// seedOwner returns the account the demo data belongs to, creating it as an
// editor when it does not exist yet.
func seedOwner(ctx context.Context, store *database.Store, email string) (auth.User, error) {
	if u, err := store.FindUserByEmail(ctx, email); err == nil {
		return u, nil
	}
	now := time.Now().UTC()
	u := auth.User{
		UID:       "seed-" + fmt.Sprint(now.UnixNano()),
		Email:     email,
		Name:      "Demo",
		Role:      auth.RoleEditor,
		CreatedAt: now,
	}
	if err := store.SaveUser(ctx, u, true); err != nil {
		return auth.User{}, fmt.Errorf("create owner %s: %w", email, err)
	}
	return u, nil
}

func seedOne(ctx context.Context, store *database.Store, svc *rsvp.Service, owner auth.User, n, maxReplies int) seedResult {
	templates := invitation.Templates()
	tpl := templates[rand.Intn(len(templates))]

	d := invitation.NewFromTemplate(tpl)
	d.GroomName = grooms[rand.Intn(len(grooms))]
	d.BrideName = brides[rand.Intn(len(brides))]
	d.Date = time.Now().AddDate(0, 0, 7+rand.Intn(180)).Format("2006-01-02")

	customer := fmt.Sprintf("%s & %s #%d", d.GroomName, d.BrideName, n)
	inv, err := store.CreateInvitation(ctx, owner.UID, owner.Email, customer, d)
	if err != nil {
		return seedResult{ID: customer, Error: err}
	}

	count := 0
	if maxReplies > 0 {
		count = rand.Intn(maxReplies + 1)
	}
	for i := 0; i < count; i++ {
		att := rsvp.Attending
		if rand.Intn(4) == 0 {
			att = rsvp.NotAttending
		}
		_, err := svc.Submit(ctx, rsvp.Submission{
			InvitationID: inv.ID,
			GuestName:    guests[rand.Intn(len(guests))],
			GuestWishes:  wishes[rand.Intn(len(wishes))],
			Attendance:   att,
		}, "")
		if err != nil {
			return seedResult{ID: inv.ID, RSVPs: i, Error: err}
		}
	}
	return seedResult{ID: inv.ID, RSVPs: count, Success: true}
}
