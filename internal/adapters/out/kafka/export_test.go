package kafka

var NewStatusChangedPublisherWithWriter = newStatusChangedPublisher

var NewWriter = newWriter
