package main

// Seed demo resumes for one account:
//   go run ./cmd/seed -email demo@example.com -password secret123 -count 3

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"resume-builder/internal/bootstrap"
	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/storage/docstore"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/users"
	"resume-builder/resume/model"
)

func main() {
	email := flag.String("email", "demo@example.com", "account email")
	password := flag.String("password", "demo-password", "account password")
	count := flag.Int("count", 3, "resumes to create")
	seed := flag.Int64("seed", time.Now().UnixNano(), "faker seed")
	flag.Parse()

	if err := run(*email, *password, *count, *seed); err != nil {
		telemetry.Error("seed.failed", map[string]any{"err": err})
		os.Exit(1)
	}
}

func run(email, password string, count int, seed int64) error {
	ctx := context.Background()
	gofakeit.Seed(seed)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	user, err := app.UsersService.Register(ctx, email, password, gofakeit.Name())
	if errors.Is(err, users.ErrEmailTaken) {
		user, err = app.UsersService.Authenticate(ctx, email, password)
	}
	if err != nil {
		return fmt.Errorf("account %s: %w", email, err)
	}
	owner := resumes.Owner{UserID: user.ID, Email: user.Email}

	tpls := app.Catalog.List()
	if len(tpls) == 0 {
		return errors.New("template catalog is empty")
	}
	for i := 0; i < count; i++ {
		tpl := tpls[i%len(tpls)]
		r, err := app.ResumesService.Create(ctx, owner, tpl.ID)
		if err != nil {
			return err
		}
		p, err := docstore.FlatResumePath(r.ID)
		if err != nil {
			return err
		}
		demo := fakeResume(user.Email)
		for _, section := range model.Sections() {
			if section == model.SectionProfilePhoto {
				continue
			}
			value, err := demo.SectionValue(section)
			if err != nil {
				return err
			}
			if err := app.ResumesService.UpdateSection(ctx, p, section, value); err != nil {
				return fmt.Errorf("seed %s/%s: %w", r.ID, section, err)
			}
		}
		telemetry.Info("seed.resume", map[string]any{"resumeId": r.ID, "templateId": tpl.ID, "userId": user.ID})
	}
	return nil
}

func fakeResume(email string) model.Resume {
	r := model.Default()
	r.PersonalDetail = model.PersonalDetail{
		Name:    gofakeit.Name(),
		Email:   email,
		Phone:   gofakeit.Phone(),
		Address: gofakeit.City() + ", " + gofakeit.Country(),
	}
	r.Summary = gofakeit.Paragraph(1, 3, 12, " ")

	for i := 0; i < gofakeit.Number(1, 3); i++ {
		start := gofakeit.DateRange(time.Now().AddDate(-12, 0, 0), time.Now().AddDate(-1, 0, 0))
		r.Experience = append(r.Experience, model.Experience{
			Company:     gofakeit.Company(),
			Position:    gofakeit.JobTitle(),
			StartDate:   start.Format("2006-01"),
			EndDate:     start.AddDate(gofakeit.Number(1, 4), 0, 0).Format("2006-01"),
			Description: gofakeit.Sentence(14),
		})
	}
	r.EducationDetail = append(r.EducationDetail, model.Education{
		Institution: gofakeit.Company() + " University",
		Course:      gofakeit.JobDescriptor() + " Studies",
		Level:       gofakeit.RandomString([]string{"BSc", "MSc", "Diploma"}),
		Result:      fmt.Sprintf("%.1f GPA", gofakeit.Float64Range(2.8, 4.0)),
		StartDate:   "2010-09",
		EndDate:     "2014-06",
	})
	for i := 0; i < gofakeit.Number(3, 6); i++ {
		r.Skills = append(r.Skills, gofakeit.HackerNoun())
	}
	return r
}
