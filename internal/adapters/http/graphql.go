package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/SomeLazyDayz/Backend-15-11/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lng": &graphql.Field{Type: graphql.Float},
		},
	})

	hospitalType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Hospital",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.Int},
			"name":     &graphql.Field{Type: graphql.String},
			"location": &graphql.Field{Type: geoPointType},
		},
	})

	donorType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Donor",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.Int},
			"name":       &graphql.Field{Type: graphql.String},
			"phone":      &graphql.Field{Type: graphql.String},
			"email":      &graphql.Field{Type: graphql.String},
			"address":    &graphql.Field{Type: graphql.String},
			"blood_type": &graphql.Field{Type: graphql.String},
			"location":   &graphql.Field{Type: geoPointType},
		},
	})

	matchType := graphql.NewObject(graphql.ObjectConfig{
		Name: "DonorMatch",
		Fields: graphql.Fields{
			"donor":       &graphql.Field{Type: donorType},
			"distance_km": &graphql.Field{Type: graphql.Float},
			"score":       &graphql.Field{Type: graphql.Float},
		},
	})

	matchResultType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MatchResult",
		Fields: graphql.Fields{
			"hospital":          &graphql.Field{Type: hospitalType},
			"blood_type_needed": &graphql.Field{Type: graphql.String},
			"radius_km":         &graphql.Field{Type: graphql.Float},
			"total_matched":     &graphql.Field{Type: graphql.Int},
			"top_matches":       &graphql.Field{Type: graphql.NewList(matchType)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"hospitals": &graphql.Field{
				Type:        graphql.NewList(hospitalType),
				Description: "List all registered hospitals",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Hospitals.List(p.Context)
				},
			},
			"hospital": &graphql.Field{
				Type:        hospitalType,
				Description: "Get a hospital by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(int)
					return deps.Hospitals.GetByID(p.Context, int64(id))
				},
			},
			"donor": &graphql.Field{
				Type:        donorType,
				Description: "Get a donor by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(int)
					return deps.Donors.GetByID(p.Context, int64(id))
				},
			},
			"donors": &graphql.Field{
				Type:        graphql.NewList(donorType),
				Description: "List all users in the directory",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Donors.List(p.Context)
				},
			},
			"matchDonors": &graphql.Field{
				Type:        matchResultType,
				Description: "Rank donors near a hospital for a blood type",
				Args: graphql.FieldConfigArgument{
					"hospital_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"blood_type":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"radius_km":   &graphql.ArgumentConfig{Type: graphql.Float},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					req := domain.AlertRequest{
						HospitalID: int64(p.Args["hospital_id"].(int)),
						BloodType:  p.Args["blood_type"].(string),
					}
					if r, ok := p.Args["radius_km"].(float64); ok {
						req.RadiusKm = &r
					}
					return deps.Alerts.CreateAlert(p.Context, req)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
