package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"surveygraph/internal/cache"
	"surveygraph/internal/config"
	"surveygraph/internal/engine"
	"surveygraph/internal/model"
	"surveygraph/internal/repository"
	"surveygraph/internal/service"
)

func strptr(s string) *string { return &s }
func intptr(i int) *int       { return &i }

// surveyTemplates is the seed content. Question keys are local to each
// template; the builder resolves them to stored ids.
func surveyTemplates() []model.SurveyTemplate {
	return []model.SurveyTemplate{
		{
			Title:       "Food safety complaint",
			Description: "Report an unsafe or mislabeled food product",
			Icon:        "shopping-cart",
			AuthType:    model.AuthTypeOptional,
			Pages: []model.PageTemplate{
				{
					Title: "What are you reporting?",
					Questions: []model.QuestionTemplate{
						{
							Key:      "subject",
							Type:     model.QuestionTypeSelect,
							Title:    "What is the complaint about?",
							Required: true,
							Options: []model.OptionTemplate{
								{Title: "A product I bought", NextQuestion: "product"},
								{Title: "A restaurant or cafe", NextQuestion: "venue"},
							},
						},
					},
				},
				{
					Title: "The product",
					Questions: []model.QuestionTemplate{
						{
							Key:          "product",
							Type:         model.QuestionTypeInput,
							Title:        "Product name",
							Required:     true,
							Condition:    &model.ConditionTemplate{Question: "subject"},
							NextQuestion: "issues",
						},
						{
							Key:          "issues",
							Type:         model.QuestionTypeMultiSelect,
							Title:        "What is wrong with it?",
							Required:     true,
							NextQuestion: "when",
							Options: []model.OptionTemplate{
								{Title: "Spoiled or moldy"},
								{Title: "Foreign object inside", NextQuestion: "objectPhoto"},
								{Title: "Label does not match contents", NextQuestion: "labelPhoto"},
								{Title: "Caused illness", NextQuestion: "sawDoctor"},
							},
						},
						{
							Key:   "objectPhoto",
							Type:  model.QuestionTypeFiles,
							Title: "Photo of the foreign object",
							Hint:  "Attach a picture if you still have the product",
						},
						{
							Key:   "labelPhoto",
							Type:  model.QuestionTypeFiles,
							Title: "Photo of the label",
						},
						{
							Key:            "sawDoctor",
							Type:           model.QuestionTypeCheckbox,
							Title:          "Did you see a doctor about it?",
							Required:       true,
							RiskEvaluation: true,
						},
					},
				},
				{
					Title: "The venue",
					Questions: []model.QuestionTemplate{
						{
							Key:          "venue",
							Type:         model.QuestionTypeInput,
							Title:        "Name of the restaurant or cafe",
							Required:     true,
							Condition:    &model.ConditionTemplate{Question: "subject", ValueIndex: intptr(1)},
							NextQuestion: "venueLocation",
						},
						{
							Key:          "venueLocation",
							Type:         model.QuestionTypeLocation,
							Title:        "Where is it?",
							Hint:         "Pick the place on the map",
							NextQuestion: "when",
						},
					},
				},
				{
					Title: "Details",
					Questions: []model.QuestionTemplate{
						{
							Key:          "when",
							Type:         model.QuestionTypeDate,
							Title:        "When did it happen?",
							Required:     true,
							NextQuestion: "description",
						},
						{
							Key:   "description",
							Type:  model.QuestionTypeText,
							Title: "Describe what happened",
							DynamicFields: []model.PatchTemplate{
								{
									Condition: model.ConditionTemplate{Question: "sawDoctor", Value: true},
									Title:     strptr("Describe what happened and the symptoms you had"),
									Required:  boolTrue(),
								},
							},
							NextQuestion: "contactEmail",
						},
						{
							Key:          "contactEmail",
							Type:         model.QuestionTypeEmail,
							Title:        "Your email",
							AuthRelation: model.AuthRelationEmail,
							NextQuestion: "contactPhone",
						},
						{
							Key:          "contactPhone",
							Type:         model.QuestionTypeInput,
							Title:        "Your phone number",
							AuthRelation: model.AuthRelationPhone,
						},
					},
				},
			},
		},
		{
			Title:       "Inspection request",
			Description: "Ask for an inspection of a food business",
			Icon:        "search",
			AuthType:    model.AuthTypeRequired,
			Pages: []model.PageTemplate{
				{
					Title: "The business",
					Questions: []model.QuestionTemplate{
						{
							Key:          "businessName",
							Type:         model.QuestionTypeInput,
							Title:        "Business name",
							Required:     true,
							NextQuestion: "businessType",
						},
						{
							Key:          "businessType",
							Type:         model.QuestionTypeAddress,
							Title:        "Business type",
							Required:     true,
							Options: []model.OptionTemplate{
								{Title: "Shop"},
								{Title: "Restaurant"},
								{Title: "Producer"},
							},
							NextQuestion: "reason",
						},
						{
							Key:          "reason",
							Type:         model.QuestionTypeText,
							Title:        "Why should it be inspected?",
							Required:     true,
							NextQuestion: "requesterEmail",
						},
					},
				},
				{
					Title: "Your details",
					Questions: []model.QuestionTemplate{
						{
							Key:          "requesterEmail",
							Type:         model.QuestionTypeEmail,
							Title:        "Your email",
							Required:     true,
							AuthRelation: model.AuthRelationEmail,
						},
					},
				},
			},
		},
	}
}

func boolTrue() *bool {
	b := true
	return &b
}

func main() {
	log.Println("seed started")
	ctx := context.Background()

	cfg := config.Load()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)

	redisAddr := strings.TrimPrefix(cfg.RedisAddr, "redis://")
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	surveyRepo := repository.NewSurveyRepo(db)
	pageRepo := repository.NewPageRepo(db)
	questionRepo := repository.NewQuestionRepo(db)
	seedRepo := repository.NewSeedRepo(db)
	pageCache := cache.NewPageCache(rdb)

	builder := engine.NewBuilder(service.NewGraphStore(surveyRepo, pageRepo, questionRepo))
	surveySvc := service.NewSurveyService(surveyRepo, pageRepo, questionRepo, seedRepo, pageCache, builder)

	templates := surveyTemplates()
	hash, err := service.TemplateHash(templates)
	if err != nil {
		log.Fatal("Failed to hash templates:", err)
	}

	force := os.Getenv("SEED_REFRESH") == "true"
	seeded, err := surveySvc.Upsert(ctx, templates, hash, force)
	if err != nil {
		log.Fatal("Seed failed:", err)
	}
	if !seeded {
		log.Println("Seed content unchanged, nothing to do")
		return
	}
	log.Printf("Seeded %d surveys (hash %s)", len(templates), hash)
}
