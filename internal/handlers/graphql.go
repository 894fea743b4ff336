package handlers

import (
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/labstack/echo/v4"

	"canteen-backend/internal/identity"
)

type GraphQLHandler struct {
	Schema graphql.Schema
}

// Query executes one document per call. Execution errors of any origin
// (middleware or resolver) land in the errors array with a 400; a clean
// execution is a 200 even when the data carries a business failure.
func (h *GraphQLHandler) Query(c echo.Context) error {
	var req struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	ctx := identity.WithClientIP(c.Request().Context(), c.RealIP())

	result := graphql.Do(graphql.Params{
		Schema:         h.Schema,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        ctx,
	})

	status := http.StatusOK
	if result.HasErrors() {
		status = http.StatusBadRequest
	}
	return c.JSON(status, result)
}

func (h *GraphQLHandler) Explorer(c echo.Context) error {
	return c.HTML(http.StatusOK, graphiqlPage)
}

const graphiqlPage = `<!DOCTYPE html>
<html>
<head>
  <title>Canteen GraphQL</title>
  <style>html, body, #graphiql { height: 100%; margin: 0; }</style>
  <link rel="stylesheet" href="https://unpkg.com/graphiql/graphiql.min.css" />
</head>
<body>
  <div id="graphiql">Loading...</div>
  <script src="https://unpkg.com/react@18/umd/react.production.min.js"></script>
  <script src="https://unpkg.com/react-dom@18/umd/react-dom.production.min.js"></script>
  <script src="https://unpkg.com/graphiql/graphiql.min.js"></script>
  <script>
    ReactDOM.createRoot(document.getElementById('graphiql')).render(
      React.createElement(GraphiQL, {
        fetcher: GraphiQL.createFetcher({ url: '/graphql' }),
      })
    );
  </script>
</body>
</html>
`
