package graph

import (
	"log/slog"
	"time"

	"github.com/graphql-go/graphql"

	"canteen-backend/internal/models"
)

// NewSchema builds the executable schema. Each field's middleware list
// is declared here, at build time; Wrap composes it around the business
// resolver in the declared order.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	userType := graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id":    &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"email": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"name": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.String),
				Resolve: Wrap(resolveUserName, Uppercase),
			},
			"entity":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"location": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"phone":    &graphql.Field{Type: graphql.String},
			"username": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	mealType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Meal",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"location":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"date":        &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
			"name":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"description": &graphql.Field{Type: graphql.String},
			"price":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	settingType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Setting",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"fromDate": &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
			"toDate":   &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
			"month":    &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"year":     &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		},
	})

	registrationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Registration",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"month":     &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"year":      &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"choice":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"createdAt": &graphql.Field{Type: graphql.DateTime},
			"updatedAt": &graphql.Field{Type: graphql.DateTime},
		},
	})

	mealOrderResultType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MealOrderResult",
		Fields: graphql.Fields{
			"success": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
			"message": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	registerInputType := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "RegisterInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"month":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
			"year":   &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
			"choice": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"currentUser": &graphql.Field{
				Type:    userType,
				Resolve: Wrap(r.CurrentUser, Log(slog.LevelInfo), Auth),
			},
			"setting": &graphql.Field{
				Type:    settingType,
				Resolve: Wrap(r.Setting, Log(slog.LevelInfo)),
			},
			"meals": &graphql.Field{
				Type: graphql.NewList(mealType),
				Args: graphql.FieldConfigArgument{
					"location": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: Wrap(r.Meals, Log(slog.LevelInfo), Auth),
			},
			"registrations": &graphql.Field{
				Type: graphql.NewList(registrationType),
				Args: graphql.FieldConfigArgument{
					"location": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"month":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"year":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: Wrap(r.Registrations,
					Log(slog.LevelInfo),
					Auth,
					Limit(r.Limiter, LimitConfig{Key: "registrations", Amount: 1, Timeout: 5 * time.Second}),
				),
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"register": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"registerInput": &graphql.ArgumentConfig{Type: graphql.NewNonNull(registerInputType)},
				},
				Resolve: Wrap(r.Register, Log(slog.LevelInfo), Auth),
			},
			"orderMeal": &graphql.Field{
				Type: mealOrderResultType,
				Args: graphql.FieldConfigArgument{
					"mealId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: Wrap(r.OrderMeal, Log(slog.LevelInfo), Auth),
			},
			"removeOrder": &graphql.Field{
				Type: mealOrderResultType,
				Args: graphql.FieldConfigArgument{
					"mealOrderId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: Wrap(r.RemoveOrder, Log(slog.LevelInfo), Auth),
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

func resolveUserName(p graphql.ResolveParams) (interface{}, error) {
	switch u := p.Source.(type) {
	case *models.User:
		return u.Name, nil
	case models.User:
		return u.Name, nil
	}
	return nil, nil
}
