package bmp180

import "errors"

var (
	ErrNilHandle        = errors.New("bmp180: handle is nil")
	ErrNotInitialized   = errors.New("bmp180: handle is not initialized")
	ErrLinkage          = errors.New("bmp180: transport is not fully linked")
	ErrIdentity         = errors.New("bmp180: unexpected chip id")
	ErrIO               = errors.New("bmp180: bus i/o failed")
	ErrCalibrationRead  = errors.New("bmp180: failed to read calibration block")
	ErrTimeout          = errors.New("bmp180: conversion timed out")
	ErrInvalidParameter = errors.New("bmp180: invalid parameter")
)
