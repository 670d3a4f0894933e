package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	artworkType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Artwork",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"title":       &graphql.Field{Type: graphql.String},
			"author":      &graphql.Field{Type: graphql.String},
			"image_url":   &graphql.Field{Type: graphql.String},
			"marbling":    &graphql.Field{Type: graphql.String},
			"collage":     &graphql.Field{Type: graphql.String},
			"hazard_type": &graphql.Field{Type: graphql.String},
			"location":    &graphql.Field{Type: geoPointType},
			"likes":       &graphql.Field{Type: graphql.Int},
			"is_new":      &graphql.Field{Type: graphql.Boolean},
			"distance":    &graphql.Field{Type: graphql.Float},
			"created_at":  &graphql.Field{Type: graphql.DateTime},
		},
	})

	commentType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Comment",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"artwork_id": &graphql.Field{Type: graphql.String},
			"author":     &graphql.Field{Type: graphql.String},
			"body":       &graphql.Field{Type: graphql.String},
			"reply_to":   &graphql.Field{Type: graphql.String},
			"created_at": &graphql.Field{Type: graphql.DateTime},
		},
	})

	likeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Likes",
		Fields: graphql.Fields{
			"artwork_id": &graphql.Field{Type: graphql.String},
			"liked":      &graphql.Field{Type: graphql.Boolean},
			"count":      &graphql.Field{Type: graphql.Int},
			"popular":    &graphql.Field{Type: graphql.Boolean},
		},
	})

	positionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Position",
		Fields: graphql.Fields{
			"longitude": &graphql.Field{Type: graphql.Float},
			"latitude":  &graphql.Field{Type: graphql.Float},
			"altitude":  &graphql.Field{Type: graphql.Float},
		},
	})

	cameraType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Camera",
		Fields: graphql.Fields{
			"position": &graphql.Field{Type: positionType},
			"heading":  &graphql.Field{Type: graphql.Float},
			"tilt":     &graphql.Field{Type: graphql.Float},
		},
	})

	sessionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "CameraSession",
		Fields: graphql.Fields{
			"phase":             &graphql.Field{Type: graphql.String},
			"fingers":           &graphql.Field{Type: graphql.Int},
			"allowed_tilt":      &graphql.Field{Type: graphql.Float},
			"top_down":          &graphql.Field{Type: graphql.Boolean},
			"guard":             &graphql.Field{Type: graphql.String},
			"camera":            &graphql.Field{Type: cameraType},
			"last_valid_camera": &graphql.Field{Type: cameraType},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"artworks": &graphql.Field{
				Type:        graphql.NewList(artworkType),
				Description: "List visible artworks, newest first",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Artworks.List(p.Context)
				},
			},
			"artwork": &graphql.Field{
				Type:        artworkType,
				Description: "Get an artwork by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					return deps.Artworks.GetByID(p.Context, id)
				},
			},
			"artworksNearby": &graphql.Field{
				Type:        graphql.NewList(artworkType),
				Description: "Find artworks near a location",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 500.0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lon := p.Args["lon"].(float64)
					radius := p.Args["radius"].(float64)
					limit := p.Args["limit"].(int)
					return deps.Artworks.FindNearby(p.Context, lat, lon, radius, limit)
				},
			},
			"comments": &graphql.Field{
				Type:        graphql.NewList(commentType),
				Description: "Visible comments on an artwork",
				Args: graphql.FieldConfigArgument{
					"artworkId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					artworkID := p.Args["artworkId"].(string)
					return deps.Comments.List(p.Context, artworkID)
				},
			},
			"likes": &graphql.Field{
				Type:        likeType,
				Description: "Like total for an artwork",
				Args: graphql.FieldConfigArgument{
					"artworkId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"deviceId":  &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					artworkID := p.Args["artworkId"].(string)
					deviceID, _ := p.Args["deviceId"].(string)
					return deps.Likes.Status(p.Context, artworkID, deviceID)
				},
			},
			"session": &graphql.Field{
				Type:        sessionType,
				Description: "Camera controller state of a live map session",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					return deps.Sessions.Status(p.Context, id)
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
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
