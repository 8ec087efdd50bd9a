package model

import "net/http"

// Response is the JSON envelope returned by every endpoint
type Response[T any] struct {
	Data       *T     `json:"data"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

// Success reports whether the status code is 2xx
func (r Response[T]) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func respond[T any](status int, data T, message string) Response[T] {
	return Response[T]{Data: &data, Message: message, StatusCode: status}
}

// OK builds a 200 response
func OK[T any](data T, message string) Response[T] {
	return respond(http.StatusOK, data, message)
}

// Created builds a 201 response
func Created[T any](data T, message string) Response[T] {
	return respond(http.StatusCreated, data, message)
}

// Accepted builds a 202 response
func Accepted[T any](data T, message string) Response[T] {
	return respond(http.StatusAccepted, data, message)
}

// NoContent builds a 204 response
func NoContent[T any](message string) Response[T] {
	return Response[T]{Message: message, StatusCode: http.StatusNoContent}
}

// Fail builds an error response with a null payload
func Fail[T any](status int, message string) Response[T] {
	return Response[T]{Message: message, StatusCode: status}
}
