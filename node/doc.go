// Govote Admin API
//
// The API is served on the unix domain socket of the node. Reaching the
// socket is the owner capability, so every change is made as the owner
// of the configuration.
//
// # Errors
//
//    The API uses standard HTTP status codes to indicate the success or failure of the API call.
//    The body of the response will be JSON in the following format:
//
//    ```
//    {
//      "message": "UnknownProposal(id=3)"
//    }
//    ```
// Consumes:
// - application/json
//
// Produces:
// - application/json
//
// Schemes: http
//
// Version: 0.1.0
//
// Host: localhost
//
// Base path: /
//
// swagger:meta
package node
