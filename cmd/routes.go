package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"
)

func (app *application) JWTMiddlewareWithRole(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return app.JWTMiddleware(next, requiredRole)
	}
}

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, makeResponseJSON)
	authMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole("user"))

	mux := pat.New()

	// Users
	mux.Post("/user/sign_up", standardMiddleware.ThenFunc(app.userHandler.SignUp))
	mux.Post("/user/sign_in", standardMiddleware.ThenFunc(app.userHandler.SignIn))

	// Purchases
	mux.Post("/purchases/verify", authMiddleware.ThenFunc(app.purchaseHandler.VerifyPurchase))
	mux.Get("/purchases/balance", authMiddleware.ThenFunc(app.purchaseHandler.GetBalance))
	mux.Post("/purchases/use", authMiddleware.ThenFunc(app.purchaseHandler.UseItem))
	mux.Get("/purchases/history", authMiddleware.ThenFunc(app.purchaseHandler.History))

	return standardMiddleware.Then(mux)
}
